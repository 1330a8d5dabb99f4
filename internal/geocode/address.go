package geocode

import "strings"

// Component priority lists. Suburb and neighbourhood are deliberately absent:
// upstream data for them is often wrong.
var (
	roadKeys     = []string{"road", "street", "pedestrian", "footway"}
	localityKeys = []string{"village", "hamlet", "town", "city", "municipality", "county"}
)

func first(addr map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(addr[k]); v != "" {
			return v
		}
	}
	return ""
}

// RoadFromComponents returns the road with its house number prefixed.
func RoadFromComponents(addr map[string]string) string {
	road := first(addr, roadKeys)
	if road == "" {
		return ""
	}
	if house := strings.TrimSpace(addr["house_number"]); house != "" {
		return house + " " + road
	}
	return road
}

// AddressFromComponents joins road, locality, postcode and country with ", ".
func AddressFromComponents(addr map[string]string) string {
	var parts []string
	if road := RoadFromComponents(addr); road != "" {
		parts = append(parts, road)
	}
	if locality := first(addr, localityKeys); locality != "" {
		parts = append(parts, locality)
	}
	if postcode := strings.TrimSpace(addr["postcode"]); postcode != "" {
		parts = append(parts, postcode)
	}
	if country := strings.TrimSpace(addr["country"]); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}
