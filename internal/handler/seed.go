package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/model"
	"github.com/iliyamo/fishcamp/internal/queue"
)

// MakeCampground stores a fixed sample campground and returns it as JSON.
// It is only routed in development.
func (h *CampgroundHandler) MakeCampground(c echo.Context) error {
	cg := &model.Campground{
		Title:       "My Backyard",
		Description: "cheap camping!",
	}
	if err := h.Campgrounds.Create(c.Request().Context(), cg); err != nil {
		return err
	}
	h.publish(c, queue.KindCampgroundCreated, cg.ID, "", cg.Title)
	return c.JSON(http.StatusOK, cg)
}
