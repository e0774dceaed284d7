package handling

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"atelier_server/services"

	"github.com/google/uuid"
)

// ParseArtworkListOptions reads listing filters, sorting and pagination from
// the query string. Absent parameters keep their zero value; a malformed
// known parameter fails the whole request.
func ParseArtworkListOptions(r *http.Request) (*services.ArtworkListOptions, error) {
	opts := &services.ArtworkListOptions{}

	query := r.URL.Query()
	if len(query) == 0 {
		return opts, nil
	}

	var err error
	if opts.Page, err = intParam(query, "page"); err != nil {
		return nil, err
	}
	if opts.PageSize, err = intParam(query, "page_size"); err != nil {
		return nil, err
	}

	if raw := query.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("is_active: %w", err)
		}
		opts.IsActive = &active
	}

	if raw := query.Get("artist_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("artist_id: %w", err)
		}
		opts.ArtistID = &id
	}

	opts.Medium = query.Get("medium")
	opts.SearchTerm = query.Get("search")

	if opts.MinPrice, err = centsParam(query, "min_price"); err != nil {
		return nil, err
	}
	if opts.MaxPrice, err = centsParam(query, "max_price"); err != nil {
		return nil, err
	}

	opts.SortBy = query.Get("sort_by")
	opts.SortDirection = strings.ToUpper(query.Get("sort_direction"))

	return opts, nil
}

func intParam(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

// centsParam parses a price filter. Prices travel as integer cents, so the
// value must be a non-negative whole number.
func centsParam(query url.Values, name string) (*uint64, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &value, nil
}
