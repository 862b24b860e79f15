package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/database"
	"github.com/jengzang/ecogo-motion/internal/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "telemetry.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPredictionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(setupDB(t))
	base := time.UnixMilli(1700000000000)

	for i, mode := range []models.TransportMode{models.ModeWalking, models.ModeWalking, models.ModeBus} {
		pred := models.NewPrediction(mode, 0.8, models.SourceSmoothed)
		rec := models.NewPredictionRecord("s1", pred, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Insert(ctx, &rec))
		assert.NotZero(t, rec.ID)
	}
	other := models.NewPredictionRecord("s2", models.NewPrediction(models.ModeDriving, 0.9, models.SourceFused), base)
	require.NoError(t, repo.Insert(ctx, &other))

	records, err := repo.ListBySession(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.ModeBus, records[0].Mode)
	assert.Equal(t, base.Add(2*time.Second), records[0].RecordedAt)
	assert.InDelta(t, 0.8, records[0].Probabilities[models.ModeBus], 1e-9)
	assert.Equal(t, models.SourceSmoothed, records[0].Source)

	counts, err := repo.CountByMode(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[models.TransportMode]int{models.ModeWalking: 2, models.ModeBus: 1}, counts)

	records, err = repo.ListBySession(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(setupDB(t))

	latest, err := repo.Latest(ctx, "nav")
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.UnixMilli(1700000000000)
	for i := 0; i < 3; i++ {
		rec := models.NewProgressRecord("nav", models.RouteProgress{
			CurrentIndex:            i,
			TraveledDistanceMeters:  float64(i) * 100,
			RemainingDistanceMeters: 300 - float64(i)*100,
			OnRoute:                 i != 1,
			IsNavigating:            true,
		}, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Insert(ctx, &rec))
	}

	latest, err = repo.Latest(ctx, "nav")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.CurrentIndex)
	assert.Equal(t, 200.0, latest.TraveledDistanceMeters)
	assert.True(t, latest.OnRoute)
	assert.True(t, latest.IsNavigating)

	n, err := repo.DeleteBySession(ctx, "nav")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
