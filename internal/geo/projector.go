// Package geo converts WGS84 coordinates to Web Mercator tile and pixel space.
package geo

import (
	"fmt"
	"math"
)

// TileSize is the edge length of a map tile in pixels.
const TileSize = 256

// MaxLatitude is the latitude at which the Web Mercator square ends.
// Inputs beyond it are clamped, since the projection diverges at the poles.
const MaxLatitude = 85.05112878

// TileKey identifies one tile. 0 <= X, Y < 2^Z.
type TileKey struct {
	Z int
	X int
	Y int
}

func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Z, k.X, k.Y)
}

// Valid reports whether X and Y fall inside the zoom level's grid.
func (k TileKey) Valid() bool {
	if k.Z < 0 || k.Z > 30 {
		return false
	}
	n := 1 << k.Z
	return k.X >= 0 && k.X < n && k.Y >= 0 && k.Y < n
}

// ClampLatitude limits lat to the projectable range.
func ClampLatitude(lat float64) float64 {
	return math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
}

// PixelFor returns the continuous global pixel position of (lat, lng) at zoom,
// with the origin at the top-left corner of the world raster.
func PixelFor(lat, lng float64, zoom int) (float64, float64) {
	lat = ClampLatitude(lat)
	scale := float64(TileSize) * math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180

	x := (lng + 180) / 360 * scale
	y := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * scale
	return x, y
}

// TileFor returns the tile containing (lat, lng) at zoom.
func TileFor(lat, lng float64, zoom int) TileKey {
	x, y := PixelFor(lat, lng, zoom)
	return TileOf(x, y, zoom)
}

// TileOf returns the tile containing a global pixel position. Positions on the
// far edge of the world are folded into the last tile.
func TileOf(x, y float64, zoom int) TileKey {
	n := 1 << zoom
	tx := int(math.Floor(x / TileSize))
	ty := int(math.Floor(y / TileSize))
	return TileKey{Z: zoom, X: clampIndex(tx, n), Y: clampIndex(ty, n)}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
