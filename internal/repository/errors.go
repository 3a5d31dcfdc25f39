// Package repository defines error types that are reused across the
// repositories of both backends.  These sentinel values allow the HTTP
// error handler to distinguish a missing entity from a store failure.
package repository

import "errors"

// ErrCampgroundNotFound is returned when a campground id does not resolve,
// including ids that are not even well-formed for the backend.  Handlers
// translate it into an HTTP 404 response.
var ErrCampgroundNotFound = errors.New("campground not found")

// ErrReviewNotFound is returned when a review id does not resolve.
var ErrReviewNotFound = errors.New("review not found")
