package tables

import (
	"time"

	"github.com/google/uuid"
)

// Artwork is a marketplace listing owned by an artist account.
type Artwork struct {
	tableName   struct{}  `bun:"table:artworks,alias:aw"`
	Id          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ArtistId    uuid.UUID `bun:"artist_id,notnull,type:uuid" json:"artist_id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	Medium      string    `bun:"medium" json:"medium,omitempty"` // oil, watercolor, digital, ...
	Price       uint64    `bun:"price,notnull" json:"price"`     // stored in cents
	Currency    string    `bun:"currency,notnull,default:'EUR'" json:"currency"`
	ImageURL    string    `bun:"image_url" json:"image_url,omitempty"`
	IsActive    bool      `bun:"is_active,notnull" json:"is_active"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}
