package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-stop-service/internal/adapters/googlemaps"
	"fuel-stop-service/internal/domain"
)

func TestEnrichCatalog(t *testing.T) {
	tomah := domain.Coordinates{Lat: 43.98, Lon: -90.50}
	maps := googlemaps.NewMockMaps().AddAddress("I-94 & EXIT 143, Tomah", tomah)
	repo := &fakeRepo{unlocated: []domain.Station{
		{ID: "3", Address: " I-94 & EXIT 143", City: "Tomah"},
		{ID: "9", Address: "Nowhere Rd", City: "Lost"},
	}}
	fallback := domain.Coordinates{Lat: 0, Lon: 0}

	res, err := EnrichCatalog(context.Background(), repo, maps, fallback)
	require.NoError(t, err)

	assert.Equal(t, EnrichResult{Geocoded: 1, Defaulted: 1}, res)
	assert.Equal(t, map[string]domain.Coordinates{"3": tomah, "9": fallback}, repo.updated)
}

func TestEnrichCatalogErrors(t *testing.T) {
	maps := googlemaps.NewMockMaps()
	ctx := context.Background()

	_, err := EnrichCatalog(ctx, nil, maps, domain.Coordinates{})
	assert.Error(t, err)

	_, err = EnrichCatalog(ctx, &fakeRepo{}, maps, domain.Coordinates{Lat: 95})
	assert.Error(t, err)

	boom := errors.New("db down")
	_, err = EnrichCatalog(ctx, &fakeRepo{err: boom}, maps, domain.Coordinates{})
	assert.ErrorIs(t, err, boom)

	_, err = EnrichCatalog(ctx, &fakeRepo{
		unlocated: []domain.Station{{ID: "1", Address: "x"}},
		updateErr: boom,
	}, maps, domain.Coordinates{})
	assert.ErrorIs(t, err, boom)
}

func TestEnrichCatalogCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeRepo{unlocated: []domain.Station{{ID: "1", Address: "x"}}}
	res, err := EnrichCatalog(ctx, repo, googlemaps.NewMockMaps(), domain.Coordinates{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Geocoded+res.Defaulted)
	assert.Empty(t, repo.updated)
}
