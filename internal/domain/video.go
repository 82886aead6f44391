package domain

import (
	"bytes"
	"encoding/json"
)

// Video is a catalog entry. The media itself lives in the bucket and is referenced
// by VideoFileID / ThumbnailFileID.
type Video struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Duration        Duration `json:"duration,omitempty"`
	VideoFileID     string   `json:"videoFileId,omitempty"`
	ThumbnailFileID string   `json:"thumbnailFileId,omitempty"`
	ProductLink     string   `json:"productLink,omitempty"`
	IsActive        bool     `json:"isActive"`
	IsPurchased     bool     `json:"isPurchased"`
	Views           int64    `json:"views"`
	CreatedAt       string   `json:"createdAt"`
}

// Duration is the running time shown on the video card, e.g. "12:30". Documents
// written by older frontends store a bare number; it is kept as its literal text.
type Duration string

// UnmarshalJSON accepts a string, a number or null. Any other JSON kind reads as
// empty so one odd value cannot fail the whole document.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*d = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Duration(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*d = Duration(data)
	default:
		*d = ""
	}
	return nil
}

// EntityID returns the video's identifier.
func (v Video) EntityID() string { return v.ID }

// MissingFields lists the catalog fields a well-formed video must carry.
func (v *Video) MissingFields() []string {
	var missing []string
	if v.ID == "" {
		missing = append(missing, "id")
	}
	if v.Title == "" {
		missing = append(missing, "title")
	}
	if v.Description == "" {
		missing = append(missing, "description")
	}
	if v.Price <= 0 {
		missing = append(missing, "price")
	}
	if v.CreatedAt == "" {
		missing = append(missing, "createdAt")
	}
	return missing
}

// VideoPatch holds the allow-listed fields of a video update.
// Views is deliberately absent: it only moves through IncrementViews.
type VideoPatch struct {
	Title           *string   `json:"title,omitempty" binding:"omitempty,min=1"`
	Description     *string   `json:"description,omitempty"`
	Price           *float64  `json:"price,omitempty" binding:"omitempty,gte=0"`
	Duration        *Duration `json:"duration,omitempty"`
	VideoFileID     *string   `json:"videoFileId,omitempty"`
	ThumbnailFileID *string   `json:"thumbnailFileId,omitempty"`
	ProductLink     *string   `json:"productLink,omitempty" binding:"omitempty,url"`
	IsActive        *bool     `json:"isActive,omitempty"`
	IsPurchased     *bool     `json:"isPurchased,omitempty"`
}

// Apply merges the patch into v.
func (p VideoPatch) Apply(v *Video) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.Duration != nil {
		v.Duration = *p.Duration
	}
	if p.VideoFileID != nil {
		v.VideoFileID = *p.VideoFileID
	}
	if p.ThumbnailFileID != nil {
		v.ThumbnailFileID = *p.ThumbnailFileID
	}
	if p.ProductLink != nil {
		v.ProductLink = *p.ProductLink
	}
	if p.IsActive != nil {
		v.IsActive = *p.IsActive
	}
	if p.IsPurchased != nil {
		v.IsPurchased = *p.IsPurchased
	}
}
