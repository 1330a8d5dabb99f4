package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Reverse geocode a coordinate",
	Long: `Resolve a latitude/longitude to the road name and address used on
exports. Answers are served from the geocode cache when present.

Example:
  field-reports geocode --lat 50.08751 --lng 14.42139`,
	RunE: runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.Flags().Float64("lat", 0, "Latitude")
	geocodeCmd.Flags().Float64("lng", 0, "Longitude")
	_ = geocodeCmd.MarkFlagRequired("lat")
	_ = geocodeCmd.MarkFlagRequired("lng")
}

func runGeocode(cmd *cobra.Command, args []string) error {
	p := report.GeoPoint{Lat: mustGetFloat64(cmd, "lat"), Lng: mustGetFloat64(cmd, "lng")}
	if !p.Valid() {
		return errors.New("coordinate out of range")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	resolver, err := a.resolver()
	if err != nil {
		return err
	}

	place, ok := resolver.Resolve(a.context(), p)
	if !ok {
		return fmt.Errorf("no address found for %.5f, %.5f", p.Lat, p.Lng)
	}
	fmt.Printf("Road:    %s\n", place.Road)
	fmt.Printf("Address: %s\n", place.Address)
	return nil
}
