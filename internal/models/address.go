package models

// Address is the structured result of reverse geocoding a single point.
// Attributes the provider did not return are left empty.
type Address struct {
	Locality      string // Locality is the city or county name.
	Neighbourhood string // Neighbourhood is the sub-locality name.
	Region        string // Region is the state or province name, in the provider's vocabulary.
	Road          string // Road is the street name.
	DisplayName   string // DisplayName is the full human-readable address.
}

// ResolvedLocation is what a resolution hands back to the form.
type ResolvedLocation struct {
	Locality      string `json:"locality,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	// MatchedRegion is nil when there were no candidates to choose from.
	MatchedRegion *string `json:"matched_region"`
	Region        string  `json:"region,omitempty"`
	Road          string  `json:"road,omitempty"`
	DisplayName   string  `json:"display_name,omitempty"`
}
