package locations

import (
	"net/http"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the public read API plus the token-guarded admin CRUD.
// filterHandler serves GET /filter; it lives in the filter package and is
// injected here to keep the route tree in one place.
func SetupRoutes(adminTokenHash string, filterHandler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	// Public routes - read-only access to location data
	r.Get("/", ListLocations)
	if filterHandler != nil {
		r.Get("/filter", filterHandler)
	}
	r.Get("/{location_id}", GetLocation)

	// Admin routes - require the bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuthMiddleware(adminTokenHash))

		r.Post("/", CreateLocation)
		r.Put("/{location_id}", UpdateLocation)
		r.Delete("/{location_id}", DeleteLocation)
		r.Post("/bulk", BulkReplaceLocations)
	})

	return r
}
