package models

import (
	"strconv"
	"strings"
)

// BusinessRecord is one candidate business shown to the owner for
// confirmation. Numbers are carried as decimal strings.
type BusinessRecord struct {
	PlaceName     string `json:"place_name" jsonschema:"description=Name of the Business"`
	Address       string `json:"address" jsonschema:"description=An address or sufficient information to geocode for a Lat/Lon"`
	Lat           string `json:"lat" jsonschema:"description=Numerical representation of Latitude of the location (e.g. 20.6843)"`
	Long          string `json:"long" jsonschema:"description=Numerical representation of Longitude of the location (e.g. -88.5678)"`
	ReviewRatings string `json:"review_ratings" jsonschema:"description=Numerical representation of rating (e.g. 4.8)"`
	Highlights    string `json:"highlights" jsonschema:"description=Short description highlighting key features"`
	ImageURL      string `json:"image_url" jsonschema:"description=Verified URL to an image of the business"`
	MapURL        string `json:"map_url,omitempty" jsonschema:"description=Verified URL to Google Maps"`
	PlaceID       string `json:"place_id,omitempty" jsonschema:"description=Google Maps place_id"`
}

// MaxBusinessSuggestions matches the maxItems bound on BusinessSuggestions.
const MaxBusinessSuggestions = 3

// BusinessSuggestions is the answer shape the qualify agent returns.
type BusinessSuggestions struct {
	Places []BusinessRecord `json:"places" jsonschema:"maxItems=3"`
}

// DecimalString formats f the way the suggestions have always been shown:
// shortest representation, always with a fractional part.
func DecimalString(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
