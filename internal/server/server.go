package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appmiddleware "linkup-api/internal/middleware"
	"linkup-api/internal/modules/category"
	"linkup-api/internal/modules/search"
	"linkup-api/internal/modules/user"
)

// New creates and configures the HTTP router: chi middleware, the Huma API,
// and every module's routes. The guard is composed once here and handed to
// each module for its protected operations.
func New(log *slog.Logger, guard *appmiddleware.Guard, userService user.Service, categoryService category.Service) chi.Router {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	apiConfig := huma.DefaultConfig("LinkUp API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(router, apiConfig)

	require := guard.Require()
	user.NewHandler(userService, log).RegisterRoutes(api, require)
	category.NewHandler(categoryService, log).RegisterRoutes(api, require)
	search.NewHandler(userService, categoryService, log).RegisterRoutes(api, require)

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}
