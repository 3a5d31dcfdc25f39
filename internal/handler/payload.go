package handler

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fishcamp/internal/model"
	"github.com/iliyamo/fishcamp/internal/validation"
)

// Request bodies arrive either as HTML forms with bracketed field names
// (campground[title]=...) or as JSON with the same nesting
// ({"campground":{"title":...}}).

type campgroundBody struct {
	Campground *validation.CampgroundInput `json:"campground"`
}

type reviewBody struct {
	Review *validation.ReviewInput `json:"review"`
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// bindCampground decodes the request.  The returned error, if any, only
// covers values that could not be decoded; schema checks happen later.
func bindCampground(c echo.Context) (validation.CampgroundInput, *validation.Error) {
	var in validation.CampgroundInput
	verr := &validation.Error{Schema: validation.CampgroundSchema}

	if isJSON(c) {
		var body campgroundBody
		if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
			verr.Add("", "must be valid JSON")
			return in, verr
		}
		if body.Campground == nil {
			verr.Add("", "is required")
			return in, verr
		}
		in = *body.Campground
		in.Title = strings.TrimSpace(in.Title)
		return in, nil
	}

	form, err := c.FormParams()
	if err != nil {
		verr.Add("", "must be a valid form")
		return in, verr
	}
	in.Title = strings.TrimSpace(form.Get("campground[title]"))
	in.Location = formString(form, "campground[location]")
	in.Description = formString(form, "campground[description]")
	in.Image = formString(form, "campground[image]")
	if raw := formString(form, "campground[price]"); raw != nil && *raw != "" {
		p, err := strconv.ParseFloat(*raw, 64)
		// ParseFloat accepts "Inf" and "NaN", which no backend can store.
		if err != nil || math.IsInf(p, 0) || math.IsNaN(p) {
			verr.Add("price", "must be a number")
		} else {
			in.Price = &p
		}
	}
	if len(verr.Violations) > 0 {
		return in, verr
	}
	return in, nil
}

func bindReview(c echo.Context) (validation.ReviewInput, *validation.Error) {
	var in validation.ReviewInput
	verr := &validation.Error{Schema: validation.ReviewSchema}

	if isJSON(c) {
		var body reviewBody
		if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
			verr.Add("", "must be valid JSON")
			return in, verr
		}
		if body.Review == nil {
			verr.Add("", "is required")
			return in, verr
		}
		in = *body.Review
		in.Body = strings.TrimSpace(in.Body)
		return in, nil
	}

	form, err := c.FormParams()
	if err != nil {
		verr.Add("", "must be a valid form")
		return in, verr
	}
	in.Body = strings.TrimSpace(form.Get("review[body]"))
	if raw := strings.TrimSpace(form.Get("review[rating]")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("rating", "must be a number")
		} else {
			in.Rating = n
		}
	}
	if len(verr.Violations) > 0 {
		return in, verr
	}
	return in, nil
}

// formString returns nil when the field was not submitted at all, which
// lets an update leave that field untouched.
func formString(form url.Values, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	s := strings.TrimSpace(vals[0])
	return &s
}

// merge folds the schema result into the decode result.  A field that
// could not be decoded is reported once, with its decode message.
func merge(decoded, checked *validation.Error) *validation.Error {
	if decoded == nil {
		return checked
	}
	if checked == nil {
		return decoded
	}
	failed := make(map[string]bool, len(decoded.Violations))
	for _, v := range decoded.Violations {
		failed[v.Field] = true
	}
	for _, v := range checked.Violations {
		if !failed[v.Field] {
			decoded.Violations = append(decoded.Violations, v)
		}
	}
	return decoded
}

// applyCampground copies submitted fields onto c.  Optional fields that
// were not submitted keep their current value.
func applyCampground(c *model.Campground, in validation.CampgroundInput) {
	c.Title = in.Title
	if in.Location != nil {
		c.Location = *in.Location
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
}
