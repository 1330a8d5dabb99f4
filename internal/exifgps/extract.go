// Package exifgps recovers GPS coordinates from the EXIF tags captured at
// upload time.
//
// The raw metadata blob is a JSON object of EXIF tag name to value. GPS
// coordinates appear as three-element [degrees, minutes, seconds] arrays whose
// elements are rationals ("4600/100") or plain numbers, with N/S and E/W
// reference letters in separate tags.
package exifgps

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kozaktomas/field-reports/internal/report"
)

// Extract decodes the GPS point in raw. It reports false when either axis is
// missing or unparseable.
func Extract(raw []byte) (report.GeoPoint, bool) {
	if len(raw) == 0 {
		return report.GeoPoint{}, false
	}
	var tags map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tags); err != nil {
		return report.GeoPoint{}, false
	}
	// Some extractors nest GPS tags in a "GPS" section.
	if nested, ok := tags["GPS"]; ok {
		var gps map[string]json.RawMessage
		if err := json.Unmarshal(nested, &gps); err == nil {
			for k, v := range gps {
				if _, exists := tags[k]; !exists {
					tags[k] = v
				}
			}
		}
	}

	lat, ok := axis(tags["GPSLatitude"], tags["GPSLatitudeRef"], "S")
	if !ok {
		return report.GeoPoint{}, false
	}
	lng, ok := axis(tags["GPSLongitude"], tags["GPSLongitudeRef"], "W")
	if !ok {
		return report.GeoPoint{}, false
	}
	p := report.GeoPoint{Lat: lat, Lng: lng}
	if !p.Valid() || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return report.GeoPoint{}, false
	}
	return p, true
}

// FirstPoint returns the point of the first photo, in order, whose metadata
// yields usable GPS.
func FirstPoint(photos []report.Photo) (report.GeoPoint, bool) {
	for _, ph := range photos {
		if p, ok := Extract(ph.ExifJSON); ok {
			return p, true
		}
	}
	return report.GeoPoint{}, false
}

// axis converts a DMS triple and its reference letter to decimal degrees.
func axis(dmsRaw, refRaw json.RawMessage, negativeRef string) (float64, bool) {
	if len(dmsRaw) == 0 {
		return 0, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(dmsRaw, &parts); err != nil || len(parts) != 3 {
		return 0, false
	}
	var dms [3]float64
	for i, p := range parts {
		v, ok := rational(p)
		if !ok {
			return 0, false
		}
		dms[i] = v
	}
	value := dms[0] + dms[1]/60 + dms[2]/3600

	var ref string
	if len(refRaw) > 0 {
		_ = json.Unmarshal(refRaw, &ref)
	}
	if strings.EqualFold(strings.TrimSpace(ref), negativeRef) {
		value = -value
	}
	return value, true
}

// rational parses "n/d", a numeric string, or a JSON number.
func rational(raw json.RawMessage) (float64, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, finite(num)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if n, d, found := strings.Cut(s, "/"); found {
		num, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		den, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil || den == 0 {
			return 0, false
		}
		v := num / den
		return v, finite(v)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, finite(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
