package service

import (
	"context"
	"fmt"
	"strings"

	compensationdomain "github.com/ecoverde/compensa/internal/compensation/domain"
	"github.com/ecoverde/compensa/internal/metrics"
	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParams struct {
	fx.In

	Log     *zap.Logger
	Rules   rulesdomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	rules   rulesdomain.Repository
	metrics *metrics.Metrics
}

func NewService(p ServiceParams) compensationdomain.Service {
	return &Service{
		log:     p.Log.Named("compensation.service"),
		rules:   p.Rules,
		metrics: p.Metrics,
	}
}

func (s *Service) CalculateTreeBatch(ctx context.Context, items []compensationdomain.Item) (*compensationdomain.TreeBatchResult, error) {
	if len(items) == 0 {
		return nil, compensationdomain.ErrEmptyBatch
	}

	result := &compensationdomain.TreeBatchResult{
		Processed: make([]compensationdomain.TreeItemResult, 0, len(items)),
		Rejected:  make([]compensationdomain.Rejection, 0),
	}

	for idx, item := range items {
		municipality := stringField(item, "municipality")
		group := stringField(item, "group")
		rawQuantity := item["quantidade"]

		if municipality == "" || rawQuantity == nil {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "municipality and quantidade are required",
				Item:   item,
			})
			continue
		}

		quantity, ok := intValue(rawQuantity)
		if !ok {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "quantidade must be an integer",
				Item:   item,
			})
			continue
		}

		rule, err := s.rules.ResolveTreeRule(ctx, municipality, group)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "no rule found",
				FiltersUsed: map[string]any{
					"municipality": municipality,
					"group":        group,
				},
			})
			continue
		}

		endangered := truthy(item["endangered"])
		multiplier := 1.0
		if endangered {
			multiplier = rule.EndangeredMultiplier
			if multiplier == 0 {
				multiplier = 1.0
			}
		}

		perTree := float64(rule.BaseCompensation) * multiplier
		itemTotal := float64(quantity) * perTree
		result.GrandTotal += itemTotal

		result.Processed = append(result.Processed, compensationdomain.TreeItemResult{
			Municipality:         municipality,
			Group:                group,
			Quantity:             quantity,
			Endangered:           endangered,
			BaseCompensation:     rule.BaseCompensation,
			EndangeredMultiplier: multiplier,
			CompensationPerTree:  perTree,
			ItemTotal:            itemTotal,
		})
	}

	s.observeBatch("tree", len(result.Processed), len(result.Rejected))
	return result, nil
}

func (s *Service) CalculatePatchBatch(ctx context.Context, items []compensationdomain.Item) (*compensationdomain.PatchBatchResult, error) {
	if len(items) == 0 {
		return nil, compensationdomain.ErrEmptyBatch
	}

	result := &compensationdomain.PatchBatchResult{
		Processed: make([]compensationdomain.PatchItemResult, 0, len(items)),
		Rejected:  make([]compensationdomain.Rejection, 0),
	}

	for idx, item := range items {
		municipality := stringField(item, "municipality")
		rawArea := item["area_m2"]

		var missing []string
		if municipality == "" {
			missing = append(missing, "municipality")
		}
		if rawArea == nil {
			missing = append(missing, "area_m2")
		}
		if len(missing) > 0 {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: fmt.Sprintf("mandatory fields missing (%s)", strings.Join(missing, ", ")),
				Item:   item,
			})
			continue
		}

		area, ok := floatValue(rawArea)
		if !ok {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "area_m2 is not a number",
				Item:   item,
			})
			continue
		}

		rule, err := s.rules.ResolvePatchRule(ctx, municipality)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "no patch compensation rule for this municipality",
				Item:   item,
			})
			continue
		}

		itemTotal := rule.CompensationM2 * area
		result.GrandTotal += itemTotal

		result.Processed = append(result.Processed, compensationdomain.PatchItemResult{
			Municipality:      municipality,
			AreaM2:            area,
			CompensationPerM2: rule.CompensationM2,
			ItemTotal:         itemTotal,
		})
	}

	s.observeBatch("patch", len(result.Processed), len(result.Rejected))
	return result, nil
}

func (s *Service) CalculateAppBatch(ctx context.Context, items []compensationdomain.Item) (*compensationdomain.AppBatchResult, error) {
	if len(items) == 0 {
		return nil, compensationdomain.ErrEmptyBatch
	}

	result := &compensationdomain.AppBatchResult{
		Processed: make([]compensationdomain.AppItemResult, 0, len(items)),
		Rejected:  make([]compensationdomain.Rejection, 0),
	}

	for idx, item := range items {
		municipality := stringField(item, "municipality")

		// quantidade defaults to one unit when the key is absent; an
		// explicit null is a missing mandatory field.
		rawQuantity, present := item["quantidade"]
		if !present {
			rawQuantity = 1.0
		}

		var missing []string
		if municipality == "" {
			missing = append(missing, "municipality")
		}
		if rawQuantity == nil {
			missing = append(missing, "quantidade")
		}
		if len(missing) > 0 {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: fmt.Sprintf("mandatory fields missing (%s)", strings.Join(missing, ", ")),
				Item:   item,
			})
			continue
		}

		quantity, ok := floatValue(rawQuantity)
		if !ok {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "quantidade is not a number",
				Item:   item,
			})
			continue
		}

		rule, err := s.rules.ResolveAppRule(ctx, municipality)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			result.Rejected = append(result.Rejected, compensationdomain.Rejection{
				Index:  idx,
				Reason: "no PPA compensation rule for this municipality",
				Item:   item,
			})
			continue
		}

		itemTotal := rule.CompensationPerUnit * quantity
		result.GrandTotal += itemTotal

		result.Processed = append(result.Processed, compensationdomain.AppItemResult{
			Municipality:        municipality,
			Quantity:            quantity,
			CompensationPerUnit: rule.CompensationPerUnit,
			ItemTotal:           itemTotal,
		})
	}

	s.observeBatch("app", len(result.Processed), len(result.Rejected))
	return result, nil
}

func (s *Service) observeBatch(regime string, accepted, rejected int) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchesTotal.WithLabelValues(regime).Inc()
	s.metrics.ItemsAccepted.WithLabelValues(regime).Add(float64(accepted))
	s.metrics.ItemsRejected.WithLabelValues(regime).Add(float64(rejected))
}
