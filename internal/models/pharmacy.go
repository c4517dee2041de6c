package models

// City is a canonical city of the registry.
type City struct {
	ID   int64
	Name string
}

// Pharmacy is a canonical pharmacy of the registry. Rows are read-only to
// the ingestion pipeline; the import and geocoding tools own them.
type Pharmacy struct {
	ID        int64
	Name      string
	Address   *string
	Phone     *string
	Latitude  *float64
	Longitude *float64
	CityID    int64
}

// RawListing is one pharmacy entry scraped from the publication page.
// It lives only for the duration of a single ingest run.
type RawListing struct {
	Name      string
	Address   string
	CityToken string
	Contacts  []string
}
