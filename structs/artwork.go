package structs

// ArtworkUpdateRequest carries the editable fields of a listing. Pointers
// distinguish "leave untouched" from explicit zero values.
type ArtworkUpdateRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Medium      *string `json:"medium,omitempty" validate:"omitempty,max=100"`
	Price       *uint64 `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
