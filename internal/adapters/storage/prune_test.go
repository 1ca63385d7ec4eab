package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneOld_DeletesExpiredRuns(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	old := domain.PricingRun{Symbol: "OLD", CreatedAt: now.Add(-retentionRuns - time.Hour)}
	recent := domain.PricingRun{Symbol: "NEW", CreatedAt: now.Add(-time.Hour)}
	_, err = s.SavePricing(ctx, old)
	require.NoError(t, err)
	_, err = s.SavePricing(ctx, recent)
	require.NoError(t, err)

	require.NoError(t, s.pruneOld(ctx))

	runs, err := s.GetHistory(ctx, now.Add(-2*retentionRuns), now)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "NEW", runs[0].Symbol)
}

func TestPruneOld_ReportsErrors(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.pruneOld(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing_runs")
}
