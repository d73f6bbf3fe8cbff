package domain

import "context"

// Repository is the read side of the rule store. All resolution is
// exact-match; species search is the one substring query.
type Repository interface {
	// ResolveTreeRule returns the first rule matching the municipality,
	// and the group when group is non-empty. Ties are broken by ascending
	// id, which is insertion order for a given store snapshot. A miss
	// returns (nil, nil).
	ResolveTreeRule(ctx context.Context, municipality, group string) (*TreeRule, error)
	ResolvePatchRule(ctx context.Context, municipality string) (*PatchRule, error)
	ResolveAppRule(ctx context.Context, municipality string) (*AppRule, error)

	TreeMunicipalities(ctx context.Context) ([]string, error)
	PatchMunicipalities(ctx context.Context) ([]string, error)
	AppMunicipalities(ctx context.Context) ([]string, error)
	SpeciesFamilies(ctx context.Context) ([]string, error)

	// SearchSpecies filters by case-insensitive substring on family and
	// specie; blank filters match everything.
	SearchSpecies(ctx context.Context, family, specie string) ([]SpeciesStatus, error)
}
