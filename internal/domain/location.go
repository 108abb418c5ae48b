package domain

// Location is a geographic point with its postal metadata.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
	Postcode  string
}
