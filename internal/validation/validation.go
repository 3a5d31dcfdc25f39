// Package validation checks request payloads against the campground and
// review schemas before anything reaches the store.  A check returns nil
// for a valid payload or an *Error listing every violated constraint.
package validation

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Schema names accepted by Validate.
const (
	CampgroundSchema = "campground"
	ReviewSchema     = "review"
)

// CampgroundInput is the shape of a submitted campground.  Optional fields
// are pointers so that an update can tell "not submitted" from "cleared".
type CampgroundInput struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,max=120"`
	Price       *float64 `json:"price,omitempty" validate:"omitnil,finite,gte=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Image       *string  `json:"image,omitempty" validate:"omitnil,url|eq="`
}

// ReviewInput is the shape of a submitted review.
type ReviewInput struct {
	Body   string `json:"body" validate:"required,max=2000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// Violation is one failed constraint.
type Violation struct {
	Field   string
	Message string
}

// Error is the structured result of a failed check.
type Error struct {
	Schema     string
	Violations []Violation
}

// Error joins every violation message into one line.
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ",")
}

// StatusCode is the HTTP status a validation failure maps to.
func (e *Error) StatusCode() int { return http.StatusBadRequest }

// Add appends a violation for field; handlers use it for values that could
// not even be decoded (a non-numeric price, for instance).
func (e *Error) Add(field, message string) {
	key := e.Schema
	if field != "" {
		key += "." + field
	}
	e.Violations = append(e.Violations, Violation{
		Field:   field,
		Message: fmt.Sprintf("%q %s", key, message),
	})
}

// Validator wraps a go-playground validator configured to report json
// field names.
type Validator struct {
	v       *validator.Validate
	schemas map[string]reflect.Type
}

// New builds a Validator with the campground and review schemas registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
			return true
		}
		return !math.IsInf(f.Float(), 0) && !math.IsNaN(f.Float())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{
		v: v,
		schemas: map[string]reflect.Type{
			CampgroundSchema: reflect.TypeOf(CampgroundInput{}),
			ReviewSchema:     reflect.TypeOf(ReviewInput{}),
		},
	}
}

// Validate checks payload against the named schema.  payload may be the
// schema struct or a pointer to it.
func (v *Validator) Validate(schema string, payload any) *Error {
	want, ok := v.schemas[schema]
	if !ok {
		verr := &Error{Schema: schema}
		verr.Violations = append(verr.Violations, Violation{Message: fmt.Sprintf("unknown schema %q", schema)})
		return verr
	}
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != want {
		verr := &Error{Schema: schema}
		verr.Add("", "must be an object")
		return verr
	}

	err := v.v.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	verr := &Error{Schema: schema}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		verr.Add("", err.Error())
		return verr
	}
	for _, fe := range fes {
		verr.Add(fe.Field(), describe(fe))
	}
	return verr
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if isString {
			return fmt.Sprintf("length must be less than or equal to %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("length must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "finite":
		return "must be a number"
	case "url", "url|eq=":
		return "must be a valid uri"
	default:
		return "is invalid"
	}
}
