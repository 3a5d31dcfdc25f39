package handler // handler package contains the campground and review HTTP handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/queue"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/validation"
)

// EventPublisher receives an activity event after every successful
// mutation.  A nil EventPublisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// CampgroundHandler bundles the repositories and collaborators used by the
// campground and review routes.
type CampgroundHandler struct {
	Campgrounds repository.CampgroundRepository
	Reviews     repository.ReviewRepository
	Validator   *validation.Validator
	Events      EventPublisher
}

// NewCampgroundHandler constructs a CampgroundHandler from an open store and
// panics if a required dependency is nil.
func NewCampgroundHandler(store *repository.Store, v *validation.Validator, events EventPublisher) *CampgroundHandler {
	if store == nil || store.Campgrounds == nil || store.Reviews == nil || v == nil {
		panic("nil dependency passed to NewCampgroundHandler")
	}
	return &CampgroundHandler{
		Campgrounds: store.Campgrounds,
		Reviews:     store.Reviews,
		Validator:   v,
		Events:      events,
	}
}

// publish reports an activity event.  Failures are logged and never
// affect the response.
func (h *CampgroundHandler) publish(c echo.Context, kind, campgroundID, reviewID, title string) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ev := queue.ActivityEvent{
		Kind:         kind,
		CampgroundID: campgroundID,
		ReviewID:     reviewID,
		Title:        title,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.Publish(ctx, ev); err != nil {
		c.Logger().Warnf("activity event %s not published: %v", kind, err)
	}
}

func campgroundPath(id string) string { return "/campgrounds/" + id }
