package domain

import "github.com/bwmarrin/snowflake"

// Kind identifies one seeded rule table.
type Kind string

const (
	KindTree    Kind = "tree"
	KindPatch   Kind = "patch"
	KindApp     Kind = "app"
	KindSpecies Kind = "species"
)

// TreeRule prices the removal of a single isolated tree in a municipality.
// Several rows per municipality are allowed; the vegetation group tells
// them apart.
type TreeRule struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	Group string       `gorm:"column:group_name;type:text;index"`

	Municipality     string `gorm:"type:text;not null;index"`
	BaseCompensation int    `gorm:"column:base_compensation;not null"`

	// Scaling factor applied when the removed tree is an endangered
	// species. Defaults to 1.0 at load time, never zero.
	EndangeredMultiplier float64 `gorm:"column:endangered_multiplier;not null;default:1"`
}

func (TreeRule) TableName() string { return "tree_compensation_rules" }

// PatchRule prices cleared vegetation patches per square meter.
type PatchRule struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	Municipality   string       `gorm:"type:text;not null;uniqueIndex:uix_patch_muni"`
	CompensationM2 float64      `gorm:"column:compensation_m2;not null"`
}

func (PatchRule) TableName() string { return "patch_compensation_rules" }

// AppRule prices permanent-preservation-area interventions per unit.
type AppRule struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	Municipality        string       `gorm:"type:text;not null;uniqueIndex:uix_app_muni"`
	CompensationPerUnit float64      `gorm:"column:compensation_per_unit;not null"`
}

func (AppRule) TableName() string { return "app_compensation_rules" }

// SpeciesStatus records the conservation status of a species. Duplicate
// family/specie pairs are allowed; the table is a verification reference,
// not a registry.
type SpeciesStatus struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Family string       `gorm:"type:text;not null;index"`
	Specie string       `gorm:"type:text;not null;index"`
	Status string       `gorm:"type:text;not null"`
}

func (SpeciesStatus) TableName() string { return "species_statuses" }
