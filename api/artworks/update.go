package artworks

import (
	"errors"
	"net/http"

	"atelier_server/api/middleware"
	"atelier_server/lib"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UpdateArtwork handles PATCH /artworks/{id}. Only the owning artist or an
// admin may edit a listing.
func (wrm *ArtworkRoutesManager) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetClaimsFromContext(ctx)
	if !ok {
		gecho.Unauthorized(w, gecho.WithMessage("Invalid or missing access token"), gecho.Send())
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		wrm.logger.Warn("Invalid artwork ID format", gecho.Field("id", idStr), gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Invalid artwork ID"), gecho.Send())
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.ArtworkUpdateRequest](r)
	if err != nil {
		wrm.logger.Warn("Failed to extract and validate body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check the artwork information"), gecho.WithData(err), gecho.Send())
		return
	}

	artwork, err := wrm.artworkService.GetArtworkByID(ctx, id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w, gecho.WithMessage("Artwork not found"), gecho.Send())
			return
		}
		wrm.logger.Error("Failed to fetch artwork for update", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to update artwork"), gecho.Send())
		return
	}

	if artwork.ArtistId != claims.Sub && claims.Role != "admin" {
		wrm.logger.Warn("Artwork edit denied",
			gecho.Field("artwork_id", id),
			gecho.Field("user_id", claims.Sub),
			gecho.Field("artist_id", artwork.ArtistId),
		)
		gecho.Forbidden(w, gecho.WithMessage("You can only edit your own artworks"), gecho.Send())
		return
	}

	updated, err := wrm.artworkService.UpdateArtwork(ctx, id, body)
	if err != nil {
		wrm.logger.Error("Failed to update artwork", gecho.Field("error", err), gecho.Field("artwork_id", id))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to update artwork"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Artwork updated"),
		gecho.WithData(map[string]any{
			"artwork": updated,
		}),
		gecho.Send(),
	)
}
