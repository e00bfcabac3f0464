package category

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"linkup-api/internal/httpx"
	"linkup-api/internal/validation"
)

// Handler holds the dependencies for the category module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the category module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for the category module. Every route
// requires an authenticated session.
func (h *Handler) RegisterRoutes(api huma.API, guard func(huma.Context, func(huma.Context))) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/categories",
		Summary:     "List all categories",
		Middlewares: huma.Middlewares{guard},
	}, h.ListHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/categories/{identifier}",
		Summary:     "Get a category by ID or name",
		Middlewares: huma.Middlewares{guard},
	}, h.GetHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/categories/nearest",
		Summary:     "Find categories nearest to a point",
		Middlewares: huma.Middlewares{guard},
	}, h.NearestHandler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/search/categories",
		Summary:     "Search categories by name",
		Middlewares: huma.Middlewares{guard},
	}, h.SearchHandler)
}

// --- DTOs ---

// ListCategoriesResponse is the full catalog.
type ListCategoriesResponse struct {
	Body struct {
		Categories []Category `json:"categories"`
	}
}

// GetCategoryRequest addresses a category by numeric ID or exact name.
type GetCategoryRequest struct {
	Identifier string `path:"identifier"`
}

// GetCategoryResponse carries one category.
type GetCategoryResponse struct {
	Body struct {
		Category Category `json:"category"`
	}
}

// NearestRequest is a point plus an optional radius filter in kilometers.
type NearestRequest struct {
	Body struct {
		Latitude  float64  `json:"latitude" validate:"min=-90,max=90"`
		Longitude float64  `json:"longitude" validate:"min=-180,max=180"`
		RadiusKM  *float64 `json:"radiusKm,omitempty" validate:"omitempty,min=0"`
	}
}

// NearestResponse is the closest category plus everything inside the radius,
// nearest first.
type NearestResponse struct {
	Body struct {
		Nearest    NearbyCategory   `json:"nearest"`
		Categories []NearbyCategory `json:"categories"`
	}
}

// SearchCategoriesRequest carries the substring to match against names.
type SearchCategoriesRequest struct {
	Query string `query:"q" required:"true" minLength:"1"`
}

// --- Handlers ---

// ListHandler returns the full category catalog.
func (h *Handler) ListHandler(ctx context.Context, _ *struct{}) (*ListCategoriesResponse, error) {
	cats, err := h.service.List(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListCategoriesResponse{}
	resp.Body.Categories = cats
	return resp, nil
}

// GetHandler resolves a category by numeric ID or case-insensitive name.
func (h *Handler) GetHandler(ctx context.Context, input *GetCategoryRequest) (*GetCategoryResponse, error) {
	cat, err := h.service.Get(ctx, input.Identifier)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &GetCategoryResponse{}
	resp.Body.Category = *cat
	return resp, nil
}

// NearestHandler finds the categories closest to the given coordinates.
func (h *Handler) NearestHandler(ctx context.Context, input *NearestRequest) (*NearestResponse, error) {
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	nearest, all, err := h.service.Nearest(ctx, input.Body.Latitude, input.Body.Longitude, input.Body.RadiusKM)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &NearestResponse{}
	resp.Body.Nearest = *nearest
	resp.Body.Categories = all
	return resp, nil
}

// SearchHandler finds categories whose name contains the query.
func (h *Handler) SearchHandler(ctx context.Context, input *SearchCategoriesRequest) (*ListCategoriesResponse, error) {
	cats, err := h.service.Search(ctx, input.Query)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListCategoriesResponse{}
	resp.Body.Categories = cats
	return resp, nil
}
