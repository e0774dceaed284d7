package artworks

import (
	"errors"
	"net/http"

	"atelier_server/handling"
	"atelier_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FetchAllArtworks handles GET /artworks with filtering, pagination, and sorting
func (wrm *ArtworkRoutesManager) FetchAllArtworks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := handling.ParseArtworkListOptions(r)
	if err != nil {
		wrm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid query parameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	wrm.logger.Debug("Fetching artworks",
		gecho.Field("page", opts.Page),
		gecho.Field("page_size", opts.PageSize),
	)

	result, err := wrm.artworkService.GetAllArtworks(ctx, opts)
	if err != nil {
		handling.HandleError(err, "Failed to fetch artworks", wrm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"artworks":   result.Artworks,
			"pagination": result.Pagination,
			"filters":    result.Filters,
			"meta": map[string]any{
				"query_time_ms": result.QueryTime.Milliseconds(),
				"count":         len(result.Artworks),
			},
		}),
		gecho.Send(),
	)
}

// FetchArtworkByID handles GET /artworks/{id} to fetch a single artwork
func (wrm *ArtworkRoutesManager) FetchArtworkByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")

	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		wrm.logger.Warn("Invalid artwork ID format", gecho.Field("id", idStr), gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid artwork ID"),
			gecho.Send(),
		)
		return
	}

	artwork, err := wrm.artworkService.GetArtworkByID(ctx, id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("Artwork not found"),
				gecho.Send(),
			)
			return
		}

		handling.HandleError(err, "Failed to fetch artwork by ID", wrm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"artwork": artwork,
		}),
		gecho.Send(),
	)
}
