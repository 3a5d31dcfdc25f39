package model

import "time"

// Review is user feedback on one campground.  The owning campground is not
// stored on the review; it is implied by the campground's ReviewIDs.
type Review struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
