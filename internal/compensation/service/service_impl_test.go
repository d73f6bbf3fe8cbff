package service

import (
	"context"
	"fmt"
	"testing"

	compensationdomain "github.com/ecoverde/compensa/internal/compensation/domain"
	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	rulesrepo "github.com/ecoverde/compensa/internal/rules/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (compensationdomain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&rulesdomain.TreeRule{},
		&rulesdomain.PatchRule{},
		&rulesdomain.AppRule{},
	))

	svc := NewService(ServiceParams{
		Log:   zap.NewNop(),
		Rules: rulesrepo.NewRepository(conn),
	})
	return svc, conn
}

func TestCalculateTreeBatch_EndangeredMultiplier(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.TreeRule{
		ID: 1, Group: "native", Municipality: "piracicaba",
		BaseCompensation: 100, EndangeredMultiplier: 3.0,
	}).Error)

	result, err := svc.CalculateTreeBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "piracicaba", "group": "native", "quantidade": float64(5), "endangered": true},
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 1)
	assert.Empty(t, result.Rejected)

	item := result.Processed[0]
	assert.Equal(t, 5, item.Quantity)
	assert.True(t, item.Endangered)
	assert.Equal(t, 100, item.BaseCompensation)
	assert.Equal(t, 3.0, item.EndangeredMultiplier)
	assert.Equal(t, 300.0, item.CompensationPerTree)
	assert.Equal(t, 1500.0, item.ItemTotal)
	assert.Equal(t, 1500.0, result.GrandTotal)
}

func TestCalculateTreeBatch_EndangeredFlagTokens(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.TreeRule{
		ID: 1, Group: "native", Municipality: "piracicaba",
		BaseCompensation: 100, EndangeredMultiplier: 2.0,
	}).Error)

	result, err := svc.CalculateTreeBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "piracicaba", "quantidade": float64(1), "endangered": "yes"},
		{"municipality": "piracicaba", "quantidade": float64(1), "endangered": "no"},
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 2)

	assert.Equal(t, 2.0, result.Processed[0].EndangeredMultiplier)
	assert.Equal(t, 200.0, result.Processed[0].ItemTotal)
	assert.Equal(t, 1.0, result.Processed[1].EndangeredMultiplier)
	assert.Equal(t, 100.0, result.Processed[1].ItemTotal)
	assert.Equal(t, 300.0, result.GrandTotal)
}

func TestCalculateTreeBatch_RejectionsKeepOriginalIndex(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.TreeRule{
		ID: 1, Group: "native", Municipality: "piracicaba",
		BaseCompensation: 50, EndangeredMultiplier: 1.0,
	}).Error)

	result, err := svc.CalculateTreeBatch(context.Background(), []compensationdomain.Item{
		{"quantidade": float64(2)},                                           // no municipality
		{"municipality": "piracicaba", "quantidade": float64(2)},             // ok
		{"municipality": "piracicaba", "quantidade": "a few"},                // bad quantity
		{"municipality": "nowhere", "group": "native", "quantidade": float64(1)}, // no rule
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 1)
	require.Len(t, result.Rejected, 3)

	assert.Equal(t, 0, result.Rejected[0].Index)
	assert.Equal(t, "municipality and quantidade are required", result.Rejected[0].Reason)

	assert.Equal(t, 2, result.Rejected[1].Index)
	assert.Equal(t, "quantidade must be an integer", result.Rejected[1].Reason)

	assert.Equal(t, 3, result.Rejected[2].Index)
	assert.Equal(t, "no rule found", result.Rejected[2].Reason)
	assert.Equal(t, map[string]any{"municipality": "nowhere", "group": "native"}, result.Rejected[2].FiltersUsed)

	assert.Equal(t, 100.0, result.GrandTotal)
}

func TestCalculateTreeBatch_QuantityAsString(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.TreeRule{
		ID: 1, Group: "native", Municipality: "piracicaba",
		BaseCompensation: 10, EndangeredMultiplier: 1.0,
	}).Error)

	result, err := svc.CalculateTreeBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "piracicaba", "quantidade": "4"},
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 1)
	assert.Equal(t, 40.0, result.GrandTotal)
}

func TestCalculatePatchBatch(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.PatchRule{
		ID: 1, Municipality: "piracicaba", CompensationM2: 2.5,
	}).Error)

	result, err := svc.CalculatePatchBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "piracicaba", "area_m2": 150.5},
		{},
		{"municipality": "piracicaba", "area_m2": "wide"},
		{"municipality": "campinas", "area_m2": 10.0},
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 1)
	require.Len(t, result.Rejected, 3)

	assert.Equal(t, 376.25, result.Processed[0].ItemTotal)
	assert.Equal(t, 2.5, result.Processed[0].CompensationPerM2)
	assert.Equal(t, 376.25, result.GrandTotal)

	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Equal(t, "mandatory fields missing (municipality, area_m2)", result.Rejected[0].Reason)
	assert.Equal(t, 2, result.Rejected[1].Index)
	assert.Equal(t, "area_m2 is not a number", result.Rejected[1].Reason)
	assert.Equal(t, 3, result.Rejected[2].Index)
	assert.Equal(t, "no patch compensation rule for this municipality", result.Rejected[2].Reason)
}

func TestCalculateAppBatch_DefaultQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	require.NoError(t, conn.Create(&rulesdomain.AppRule{
		ID: 1, Municipality: "piracicaba", CompensationPerUnit: 12.0,
	}).Error)

	result, err := svc.CalculateAppBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "piracicaba"},
		{"municipality": "piracicaba", "quantidade": 2.5},
		{"municipality": "piracicaba", "quantidade": nil},
	})
	require.NoError(t, err)
	require.Len(t, result.Processed, 2)
	require.Len(t, result.Rejected, 1)

	// quantidade defaults to 1 when absent.
	assert.Equal(t, 1.0, result.Processed[0].Quantity)
	assert.Equal(t, 12.0, result.Processed[0].ItemTotal)
	assert.Equal(t, 2.5, result.Processed[1].Quantity)
	assert.Equal(t, 30.0, result.Processed[1].ItemTotal)
	assert.Equal(t, 42.0, result.GrandTotal)

	// An explicit null is a missing mandatory field.
	assert.Equal(t, 2, result.Rejected[0].Index)
	assert.Equal(t, "mandatory fields missing (quantidade)", result.Rejected[0].Reason)
}

func TestCalculateAppBatch_NoRule(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.CalculateAppBatch(context.Background(), []compensationdomain.Item{
		{"municipality": "x"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Processed)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "no PPA compensation rule for this municipality", result.Rejected[0].Reason)
	assert.Equal(t, 0.0, result.GrandTotal)
}

func TestEmptyBatchRejectedWholesale(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CalculateTreeBatch(ctx, nil)
	assert.ErrorIs(t, err, compensationdomain.ErrEmptyBatch)

	_, err = svc.CalculatePatchBatch(ctx, []compensationdomain.Item{})
	assert.ErrorIs(t, err, compensationdomain.ErrEmptyBatch)

	_, err = svc.CalculateAppBatch(ctx, nil)
	assert.ErrorIs(t, err, compensationdomain.ErrEmptyBatch)
}
