package cmd

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/kozaktomas/field-reports/internal/constants"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render a map viewport centred on a coordinate",
	Long: `Render the street map viewport used in export pages as a PNG, with a
marker at the given coordinate. Tiles are fetched through the tile cache.

Example:
  field-reports map --lat 50.08751 --lng 14.42139 --out map.png`,
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().Float64("lat", 0, "Latitude")
	mapCmd.Flags().Float64("lng", 0, "Longitude")
	mapCmd.Flags().Int("zoom", constants.PageMapZoom, "Tile zoom level")
	mapCmd.Flags().Int("width", 400, "Viewport width in pixels")
	mapCmd.Flags().Int("height", 300, "Viewport height in pixels")
	mapCmd.Flags().String("out", "map.png", "Output PNG path")
	_ = mapCmd.MarkFlagRequired("lat")
	_ = mapCmd.MarkFlagRequired("lng")
}

func runMap(cmd *cobra.Command, args []string) error {
	p := report.GeoPoint{Lat: mustGetFloat64(cmd, "lat"), Lng: mustGetFloat64(cmd, "lng")}
	if !p.Valid() {
		return errors.New("coordinate out of range")
	}
	w, h := mustGetInt(cmd, "width"), mustGetInt(cmd, "height")
	if w <= 0 || h <= 0 {
		return errors.New("width and height must be positive")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	maps, err := a.compositor()
	if err != nil {
		return err
	}

	img, ok := maps.RenderViewport(a.context(), p, mustGetInt(cmd, "zoom"), w, h)
	if !ok {
		return errors.New("no map tiles could be fetched")
	}

	out := mustGetString(cmd, "out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding map: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
