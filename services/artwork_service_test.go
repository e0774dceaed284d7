package services

import (
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/require"
)

func newTestArtworkService() *ArtworkService {
	return NewArtworkService(gecho.NewDefaultLogger(), nil, nil)
}

func TestApplyDefaultOptions(t *testing.T) {
	ws := newTestArtworkService()

	opts := &ArtworkListOptions{}
	ws.applyDefaultOptions(opts)

	require.Equal(t, 1, opts.Page)
	require.Equal(t, 20, opts.PageSize)
	require.Equal(t, "created_at", opts.SortBy)
	require.Equal(t, "DESC", opts.SortDirection)
	require.NotZero(t, opts.Timeout)
}

func TestApplyDefaultOptionsClampsPageSize(t *testing.T) {
	ws := newTestArtworkService()

	opts := &ArtworkListOptions{Page: -3, PageSize: 5000}
	ws.applyDefaultOptions(opts)

	require.Equal(t, 1, opts.Page)
	require.Equal(t, 100, opts.PageSize)
}

func TestValidateOptionsRejectsBadSortField(t *testing.T) {
	ws := newTestArtworkService()

	opts := &ArtworkListOptions{SortBy: "password_hash", SortDirection: "DESC"}
	err := ws.validateOptions(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid sort field")
}

func TestValidateOptionsRejectsBadSortDirection(t *testing.T) {
	ws := newTestArtworkService()

	opts := &ArtworkListOptions{SortBy: "price", SortDirection: "SIDEWAYS"}
	err := ws.validateOptions(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid sort direction")
}

func TestValidateOptionsRejectsInvertedPriceRange(t *testing.T) {
	ws := newTestArtworkService()

	minPrice := uint64(5000)
	maxPrice := uint64(100)
	opts := &ArtworkListOptions{
		SortBy:        "price",
		SortDirection: "ASC",
		MinPrice:      &minPrice,
		MaxPrice:      &maxPrice,
	}
	err := ws.validateOptions(opts)
	require.Error(t, err)
}

func TestValidateOptionsAcceptsSaneInput(t *testing.T) {
	ws := newTestArtworkService()

	opts := &ArtworkListOptions{SortBy: "title", SortDirection: "ASC"}
	require.NoError(t, ws.validateOptions(opts))
}
