package domain

import "context"

// Conservation status codes carried by the species reference table.
const (
	StatusExtinctInWild        = "EW"
	StatusCriticallyEndangered = "CR"
	StatusEndangered           = "EN"
	StatusVulnerable           = "VU"
)

// StatusDescriptions maps a status code to its human-readable description.
// The source table is Brazilian, so descriptions stay in Portuguese.
// Codes outside the table are passed through with an empty description.
var StatusDescriptions = map[string]string{
	StatusExtinctInWild:        "presumivelmente extinta (extinta na natureza)",
	StatusCriticallyEndangered: "em perigo crítico",
	StatusEndangered:           "em perigo",
	StatusVulnerable:           "vulnerável",
}

// Record is one species status annotated for callers.
type Record struct {
	Family      string `json:"family"`
	Specie      string `json:"specie"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Service answers loose verification queries against the species status
// reference.
type Service interface {
	// Find filters by case-insensitive substring on family and specie;
	// both filters are optional.
	Find(ctx context.Context, family, specie string) ([]Record, error)
}
