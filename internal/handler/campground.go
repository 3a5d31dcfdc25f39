package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/model"
	"github.com/iliyamo/fishcamp/internal/queue"
	"github.com/iliyamo/fishcamp/internal/validation"
)

// Index renders every campground with its review count.
func (h *CampgroundHandler) Index(c echo.Context) error {
	items, err := h.Campgrounds.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "campgrounds/index", echo.Map{
		"Title":       "All Campgrounds",
		"Campgrounds": items,
	})
}

// New renders the empty creation form.
func (h *CampgroundHandler) New(c echo.Context) error {
	return c.Render(http.StatusOK, "campgrounds/new", echo.Map{"Title": "New Campground"})
}

// Create validates the submitted campground, stores it and redirects to
// its detail page.
func (h *CampgroundHandler) Create(c echo.Context) error {
	in, verr := bindCampground(c)
	if verr = merge(verr, h.Validator.Validate(validation.CampgroundSchema, &in)); verr != nil {
		return verr
	}
	cg := &model.Campground{}
	applyCampground(cg, in)
	if err := h.Campgrounds.Create(c.Request().Context(), cg); err != nil {
		return err
	}
	h.publish(c, queue.KindCampgroundCreated, cg.ID, "", cg.Title)
	return c.Redirect(http.StatusFound, campgroundPath(cg.ID))
}

// Show renders one campground with its reviews resolved in list order.
// References to reviews that no longer exist are skipped.
func (h *CampgroundHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	cg, err := h.Campgrounds.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	reviews, err := h.Reviews.ListByIDs(ctx, cg.ReviewIDs)
	if err != nil {
		return err
	}
	cg.Reviews = reviews
	return c.Render(http.StatusOK, "campgrounds/show", echo.Map{
		"Title":      cg.Title,
		"Campground": cg,
	})
}

// Edit renders the edit form prefilled with the stored values.
func (h *CampgroundHandler) Edit(c echo.Context) error {
	cg, err := h.Campgrounds.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "campgrounds/edit", echo.Map{
		"Title":      "Edit " + cg.Title,
		"Campground": cg,
	})
}

// Update validates the payload before touching the store, then applies
// the submitted fields.  The review list is never changed here.
func (h *CampgroundHandler) Update(c echo.Context) error {
	in, verr := bindCampground(c)
	if verr = merge(verr, h.Validator.Validate(validation.CampgroundSchema, &in)); verr != nil {
		return verr
	}
	ctx := c.Request().Context()
	cg, err := h.Campgrounds.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	applyCampground(cg, in)
	if err := h.Campgrounds.Update(ctx, cg); err != nil {
		return err
	}
	h.publish(c, queue.KindCampgroundUpdated, cg.ID, "", cg.Title)
	return c.Redirect(http.StatusFound, campgroundPath(cg.ID))
}

// Delete removes the campground.  Its reviews are left in place.
func (h *CampgroundHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.Campgrounds.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.publish(c, queue.KindCampgroundDeleted, id, "", "")
	return c.Redirect(http.StatusFound, "/campgrounds")
}
