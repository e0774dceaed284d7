package services

import (
	"context"
	"fmt"
	"time"

	"atelier_server/database"
	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type ArtworkService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewArtworkService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *ArtworkService {
	return &ArtworkService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// ArtworkListOptions contains filtering and pagination options for artwork queries
type ArtworkListOptions struct {
	// Pagination
	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	// Filters
	IsActive   *bool      `json:"is_active,omitempty"`   // Filter by listing status
	ArtistID   *uuid.UUID `json:"artist_id,omitempty"`   // Filter by owning artist
	Medium     string     `json:"medium,omitempty"`      // oil, acrylic, watercolor, ...
	MinPrice   *uint64    `json:"min_price,omitempty"`   // Minimum price in cents
	MaxPrice   *uint64    `json:"max_price,omitempty"`   // Maximum price in cents
	SearchTerm string     `json:"search_term,omitempty"` // Search in title and description

	// Sorting
	SortBy        string `json:"sort_by"`        // Field to sort by (created_at, price, title)
	SortDirection string `json:"sort_direction"` // ASC or DESC

	// Performance
	Timeout time.Duration `json:"-"` // Query timeout (not exposed in JSON)
}

// ArtworkListResult wraps the artwork list response with metadata
type ArtworkListResult struct {
	Artworks   []tables.Artwork    `json:"artworks"`
	Pagination database.Pagination `json:"pagination"`
	Filters    ArtworkListOptions  `json:"filters"`
	QueryTime  time.Duration       `json:"query_time"`
}

// GetAllArtworks retrieves artworks with filtering, pagination, and error handling
func (ws *ArtworkService) GetAllArtworks(ctx context.Context, opts *ArtworkListOptions) (*ArtworkListResult, error) {
	startTime := time.Now()

	if opts == nil {
		opts = &ArtworkListOptions{}
	}
	ws.applyDefaultOptions(opts)

	if err := ws.validateOptions(opts); err != nil {
		ws.logger.Error("Invalid artwork list options", gecho.Field("error", err), gecho.Field("options", opts))
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	queryCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	query := database.Query[tables.Artwork](ws.db)
	query = ws.applyFilters(query, opts)
	query = ws.applySorting(query, opts)

	result, err := database.Paginate(query, queryCtx, opts.Page, opts.PageSize)
	if err != nil {
		ws.logger.Error("Failed to fetch artworks",
			gecho.Field("error", err),
			gecho.Field("page", opts.Page),
			gecho.Field("pageSize", opts.PageSize),
			gecho.Field("duration", time.Since(startTime)))
		return nil, fmt.Errorf("failed to fetch artworks: %w", err)
	}

	ws.logger.Debug("Artworks fetched successfully",
		gecho.Field("count", len(result.Data)),
		gecho.Field("total", result.Pagination.Total),
		gecho.Field("page", result.Pagination.Page),
		gecho.Field("duration", time.Since(startTime)),
	)

	return &ArtworkListResult{
		Artworks:   result.Data,
		Pagination: result.Pagination,
		Filters:    *opts,
		QueryTime:  time.Since(startTime),
	}, nil
}

// GetArtworkByID retrieves a single artwork, cache-first
func (ws *ArtworkService) GetArtworkByID(ctx context.Context, id uuid.UUID) (*tables.Artwork, error) {
	startTime := time.Now()

	cachedArtwork, err := ws.cacheService.GetArtworkFromCache(id)
	if err != nil {
		ws.logger.Warn("Failed to get artwork from cache", gecho.Field("error", err), gecho.Field("id", id))
	} else if cachedArtwork != nil {
		ws.logger.Debug("Artwork retrieved from cache", gecho.Field("id", id), gecho.Field("duration", time.Since(startTime)))
		return cachedArtwork, nil
	}

	artwork, err := database.Query[tables.Artwork](ws.db).
		Where("id", id).
		Timeout(5 * time.Second).
		First(ctx)
	if err != nil {
		ws.logger.Error("Failed to fetch artwork by ID",
			gecho.Field("id", id),
			gecho.Field("error", err),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}

	if artwork == nil {
		ws.logger.Warn("Artwork not found", gecho.Field("id", id))
		return nil, lib.ErrNotFound
	}

	// Cache the artwork asynchronously
	go func() {
		if err := ws.cacheService.SetArtworkInCache(artwork); err != nil {
			ws.logger.Warn("Failed to cache artwork", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	return artwork, nil
}

// UpdateArtwork applies a partial update to an artwork. Only fields set in
// the request are touched; updated_at is always bumped.
func (ws *ArtworkService) UpdateArtwork(ctx context.Context, artworkID uuid.UUID, req *structs.ArtworkUpdateRequest) (*tables.Artwork, error) {
	updateData := make(map[string]any)

	if req.Title != nil {
		updateData["title"] = *req.Title
	}
	if req.Description != nil {
		updateData["description"] = *req.Description
	}
	if req.Medium != nil {
		updateData["medium"] = *req.Medium
	}
	if req.Price != nil {
		updateData["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updateData["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updateData["is_active"] = *req.IsActive
	}

	if len(updateData) > 0 {
		updateData["updated_at"] = time.Now()
		if _, err := database.Query[tables.Artwork](ws.db).Where("id", artworkID).Update(ctx, updateData); err != nil {
			ws.logger.Error("Failed to update artwork", gecho.Field("error", err), gecho.Field("artwork_id", artworkID))
			return nil, fmt.Errorf("failed to update artwork: %w", err)
		}
	}

	// Invalidate the cached copy asynchronously
	go func() {
		if err := ws.cacheService.InvalidateArtworkCache(artworkID); err != nil {
			ws.logger.Warn("Failed to invalidate artwork cache after update",
				gecho.Field("error", err),
				gecho.Field("artwork_id", artworkID),
			)
		}
	}()

	artwork, err := database.Query[tables.Artwork](ws.db).Where("id", artworkID).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated artwork: %w", err)
	}
	if artwork == nil {
		return nil, lib.ErrNotFound
	}

	ws.logger.Info("Artwork updated", gecho.Field("artwork_id", artworkID), gecho.Field("fields", len(updateData)))
	return artwork, nil
}

// applyDefaultOptions sets default values for unspecified options
func (ws *ArtworkService) applyDefaultOptions(opts *ArtworkListOptions) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100 // Max page size for performance
	}
	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}
	if opts.SortDirection == "" {
		opts.SortDirection = "DESC"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
}

// validateOptions validates the provided options
func (ws *ArtworkService) validateOptions(opts *ArtworkListOptions) error {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"price":      true,
		"title":      true,
		"medium":     true,
	}
	if !validSortFields[opts.SortBy] {
		return fmt.Errorf("invalid sort field: %s", opts.SortBy)
	}

	if opts.SortDirection != "ASC" && opts.SortDirection != "DESC" {
		return fmt.Errorf("invalid sort direction: %s (must be ASC or DESC)", opts.SortDirection)
	}

	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return fmt.Errorf("min_price cannot be greater than max_price")
	}

	return nil
}

// applyFilters applies all filter conditions to the query
func (ws *ArtworkService) applyFilters(query *database.QueryBuilder[tables.Artwork], opts *ArtworkListOptions) *database.QueryBuilder[tables.Artwork] {
	if opts.IsActive != nil {
		query = query.Where("is_active", *opts.IsActive)
	}

	if opts.ArtistID != nil {
		query = query.Where("artist_id", *opts.ArtistID)
	}

	if opts.Medium != "" {
		query = query.Where("medium", opts.Medium)
	}

	if opts.MinPrice != nil {
		query = query.WhereOp("price", ">=", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		query = query.WhereOp("price", "<=", *opts.MaxPrice)
	}

	if opts.SearchTerm != "" {
		searchPattern := "%" + opts.SearchTerm + "%"
		query = query.WhereRaw(
			"(title ILIKE ? OR description ILIKE ?)",
			searchPattern, searchPattern,
		)
	}

	return query
}

// applySorting applies sorting to the query
func (ws *ArtworkService) applySorting(query *database.QueryBuilder[tables.Artwork], opts *ArtworkListOptions) *database.QueryBuilder[tables.Artwork] {
	var direction database.OrderDirection
	if opts.SortDirection == "ASC" {
		direction = database.ASC
	} else {
		direction = database.DESC
	}

	query = query.OrderBy(opts.SortBy, direction)

	// Secondary sort by ID for consistent ordering
	query = query.OrderBy("id", database.ASC)

	return query
}
