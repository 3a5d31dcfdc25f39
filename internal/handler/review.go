package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/model"
	"github.com/iliyamo/fishcamp/internal/queue"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/validation"
)

// CreateReview validates the review, stores it and appends it to the end
// of the campground's review list.
func (h *CampgroundHandler) CreateReview(c echo.Context) error {
	in, verr := bindReview(c)
	if verr = merge(verr, h.Validator.Validate(validation.ReviewSchema, &in)); verr != nil {
		return verr
	}
	id := c.Param("id")
	rv := &model.Review{Body: in.Body, Rating: in.Rating}
	if err := h.Reviews.AddToCampground(c.Request().Context(), id, rv); err != nil {
		return err
	}
	h.publish(c, queue.KindReviewCreated, id, rv.ID, "")
	return c.Redirect(http.StatusFound, campgroundPath(id))
}

// DeleteReview detaches the review from the campground and deletes it.
// A review that the campground does not reference is reported as missing.
func (h *CampgroundHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	id, reviewID := c.Param("id"), c.Param("reviewId")
	cg, err := h.Campgrounds.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !cg.HasReview(reviewID) {
		return repository.ErrReviewNotFound
	}
	if err := h.Reviews.RemoveFromCampground(ctx, id, reviewID); err != nil {
		return err
	}
	h.publish(c, queue.KindReviewDeleted, id, reviewID, "")
	return c.Redirect(http.StatusFound, campgroundPath(id))
}
