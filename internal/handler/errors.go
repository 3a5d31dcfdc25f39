package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/validation"
)

// Messages shown on the error page.
const (
	DefaultErrorMessage    = "Something went wrong"
	PageNotFoundMessage    = "Page Not Found"
	CampgroundMissingError = "Cannot find that campground"
	ReviewMissingError     = "Cannot find that review"
)

// NotFound is the catch-all for paths no other route matches.
func NotFound(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, PageNotFoundMessage)
}

// HTTPErrorHandler renders every error returned by a handler as the error
// page.  Server errors are logged with the request line.
func HTTPErrorHandler(logger echo.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, message := classify(err)
		req := c.Request()
		if status >= http.StatusInternalServerError {
			logger.Errorf("%s %s: %v", req.Method, req.URL.Path, err)
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		data := echo.Map{"Title": "Error", "StatusCode": status, "Message": message}
		if rerr := c.Render(status, "error", data); rerr != nil {
			logger.Errorf("render error page: %v", rerr)
			_ = c.String(status, message)
		}
	}
}

// classify maps err to a status code and a message safe to show.
func classify(err error) (int, string) {
	var verr *validation.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return verr.StatusCode(), verr.Error()
	case errors.Is(err, repository.ErrCampgroundNotFound):
		return http.StatusNotFound, CampgroundMissingError
	case errors.Is(err, repository.ErrReviewNotFound):
		return http.StatusNotFound, ReviewMissingError
	case errors.As(err, &he):
		msg := DefaultErrorMessage
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, msg
	default:
		return http.StatusInternalServerError, DefaultErrorMessage
	}
}
