// Package category serves the category catalog: listing, lookup by id or
// name, substring search, and nearest-by-distance resolution. The catalog is
// small and read-heavy, so listing goes through a Redis cache-aside layer.
package category

import "net/http"

// Category is a catalog entry. Latitude and Longitude are optional; entries
// without coordinates are skipped by distance queries.
type Category struct {
	ID        int64    `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Image     *string  `db:"image" json:"image,omitempty"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
}

// NearbyCategory is a Category annotated with its distance from a reference
// point.
type NearbyCategory struct {
	Category
	DistanceKM float64 `json:"distanceKm"`
}

// DomainError mirrors the user module's error shape for this module's few
// failure cases. It satisfies httpx.DomainProblem.
type DomainError struct {
	Code       string
	HTTPStatus int
	Message    string
	TypeURI    string
	cause      error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithCause returns a copy wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string   { return http.StatusText(e.ProblemStatus()) }
func (e *DomainError) ProblemDetail() string  { return e.Message }
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return nil }

var (
	ErrNotFound = &DomainError{
		Code:       "ErrCategoryNotFound",
		HTTPStatus: http.StatusNotFound,
		Message:    "category not found",
		TypeURI:    "urn:problem:category/err-not-found",
	}

	ErrNoneNearby = &DomainError{
		Code:       "ErrNoNearbyCategory",
		HTTPStatus: http.StatusNotFound,
		Message:    "no categories found within radius",
		TypeURI:    "urn:problem:category/err-none-nearby",
	}

	ErrInternal = &DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "internal server error",
		TypeURI:    "urn:problem:category/err-internal",
	}
)
