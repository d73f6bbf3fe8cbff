package service

import (
	"context"
	"strings"

	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	speciesdomain "github.com/ecoverde/compensa/internal/species/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParams struct {
	fx.In

	Log   *zap.Logger
	Rules rulesdomain.Repository
}

type Service struct {
	log   *zap.Logger
	rules rulesdomain.Repository
}

func NewService(p ServiceParams) speciesdomain.Service {
	return &Service{
		log:   p.Log.Named("species.service"),
		rules: p.Rules,
	}
}

func (s *Service) Find(ctx context.Context, family, specie string) ([]speciesdomain.Record, error) {
	rows, err := s.rules.SearchSpecies(ctx, strings.TrimSpace(family), strings.TrimSpace(specie))
	if err != nil {
		return nil, err
	}

	records := make([]speciesdomain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, speciesdomain.Record{
			Family:      row.Family,
			Specie:      row.Specie,
			Status:      row.Status,
			Description: speciesdomain.StatusDescriptions[row.Status],
		})
	}
	return records, nil
}
