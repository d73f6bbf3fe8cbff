package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ecoverde/compensa/internal/rules/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ResolveTreeRule(ctx context.Context, municipality, group string) (*domain.TreeRule, error) {
	stmt := r.db.WithContext(ctx).
		Where("municipality = ?", municipality)
	if group != "" {
		stmt = stmt.Where("group_name = ?", group)
	}

	var rule domain.TreeRule
	err := stmt.Order("id ASC").First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ResolvePatchRule(ctx context.Context, municipality string) (*domain.PatchRule, error) {
	var rule domain.PatchRule
	err := r.db.WithContext(ctx).
		Where("municipality = ?", municipality).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ResolveAppRule(ctx context.Context, municipality string) (*domain.AppRule, error) {
	var rule domain.AppRule
	err := r.db.WithContext(ctx).
		Where("municipality = ?", municipality).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) TreeMunicipalities(ctx context.Context) ([]string, error) {
	return r.distinctMunicipalities(ctx, domain.TreeRule{}.TableName())
}

func (r *repository) PatchMunicipalities(ctx context.Context) ([]string, error) {
	return r.distinctMunicipalities(ctx, domain.PatchRule{}.TableName())
}

func (r *repository) AppMunicipalities(ctx context.Context) ([]string, error) {
	return r.distinctMunicipalities(ctx, domain.AppRule{}.TableName())
}

func (r *repository) SpeciesFamilies(ctx context.Context) ([]string, error) {
	var families []string
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT family FROM species_statuses WHERE family <> '' ORDER BY family`).
		Scan(&families).Error
	if err != nil {
		return nil, err
	}
	return families, nil
}

func (r *repository) SearchSpecies(ctx context.Context, family, specie string) ([]domain.SpeciesStatus, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.SpeciesStatus{})

	if family != "" {
		stmt = stmt.Where("LOWER(family) LIKE ?", "%"+strings.ToLower(family)+"%")
	}
	if specie != "" {
		stmt = stmt.Where("LOWER(specie) LIKE ?", "%"+strings.ToLower(specie)+"%")
	}

	var rows []domain.SpeciesStatus
	if err := stmt.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) distinctMunicipalities(ctx context.Context, table string) ([]string, error) {
	var municipalities []string
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT municipality FROM ` + table + ` WHERE municipality <> '' ORDER BY municipality`).
		Scan(&municipalities).Error
	if err != nil {
		return nil, err
	}
	return municipalities, nil
}
