package model

import "time"

// Campground is the primary listed entity.  ReviewIDs is the ordered list
// of weak references to Review documents; it is the only link between a
// campground and its reviews.  Reviews is filled in only when a handler
// resolves those references for display.
//
// Fields:
//
//	ID          - identifier assigned by the store, immutable.
//	Title       - display name, always present.
//	Location    - free-form place description.
//	Price       - nightly price, never negative.
//	Description - long description.
//	Image       - URL of a cover image.
//	ReviewIDs   - referenced review identifiers in submission order.
type Campground struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ReviewIDs   []string  `json:"reviews"`
	Reviews     []*Review `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasReview reports whether id is in the campground's reference list.
func (c *Campground) HasReview(id string) bool {
	for _, rid := range c.ReviewIDs {
		if rid == id {
			return true
		}
	}
	return false
}
