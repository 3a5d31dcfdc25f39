// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityQueue is the durable queue activity events are published to.
const ActivityQueue = "campground.activity"

// Kinds of ActivityEvent.
const (
	KindCampgroundCreated = "campground.created"
	KindCampgroundUpdated = "campground.updated"
	KindCampgroundDeleted = "campground.deleted"
	KindReviewCreated     = "review.created"
	KindReviewDeleted     = "review.deleted"
)

// ActivityEvent is published after a campground or review changes.  It
// carries enough for a consumer to log the change without querying the
// store.
type ActivityEvent struct {
	Kind         string `json:"kind"`
	CampgroundID string `json:"campground_id"`
	ReviewID     string `json:"review_id,omitempty"`
	Title        string `json:"title,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
