// Package artwork owns the artwork record, slug validation and the resolver
// that reads records through the cache and circuit breaker.
package artwork

import "errors"

// ErrNotFound is returned when no record exists for a slug.
var ErrNotFound = errors.New("artwork not found")

// Artwork is one exhibit item, keyed by its URL slug. The gateway only ever
// reads these records; ownership of the data lives with the curation tooling.
type Artwork struct {
	Slug        string `gorm:"primaryKey" json:"slug"`
	Title       string `gorm:"not null" json:"title"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Exclusive   bool   `gorm:"default:false" json:"exclusive"`

	// DisplayDuration is how long exhibit hardware shows the piece, in
	// milliseconds.
	DisplayDuration int `json:"display_duration"`

	// OwnerAuth marks pieces whose owner must additionally authenticate on
	// the exhibit device.
	OwnerAuth bool `gorm:"default:false" json:"owner_auth"`
}

func (Artwork) TableName() string {
	return "artworks"
}
