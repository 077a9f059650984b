package routes

import (
	"mayday/coordinator/internal/api"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/middleware"

	"github.com/go-chi/chi/v5"
)

var (
	coordinators = middleware.RequireRole(constants.RoleAuthority, constants.RoleVC)
	authorities  = middleware.RequireRole(constants.RoleAuthority)
)

// RegisterAPIRoutes registers every /api/v1 route. Authentication is global
// except for register and login; role guards narrow write access per resource.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		// Public
		v1.Post("/auth/register", handlers.Register())
		v1.Post("/auth/login", handlers.Login())

		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(deps.Tokens))

			authed.Get("/auth/me", handlers.Me())
			authed.Get("/stats", handlers.Stats())
			authed.Get("/stream", handlers.Stream())

			authed.Route("/events", func(events chi.Router) {
				events.Get("/", handlers.ListEvents())
				events.Get("/{id}", handlers.GetEvent())

				events.Group(func(write chi.Router) {
					write.Use(coordinators)
					write.Post("/", handlers.CreateEvent())
					write.Post("/ingest", handlers.IngestEvent())
					write.Patch("/{id}", handlers.UpdateEvent())
					write.Delete("/{id}", handlers.DeleteEvent())
					write.Post("/{id}/close", handlers.CloseEvent())
				})
			})

			authed.Route("/locations", func(locations chi.Router) {
				locations.Get("/", handlers.ListLocations())
				locations.Get("/{id}", handlers.GetLocation())

				locations.Group(func(write chi.Router) {
					write.Use(coordinators)
					write.Post("/", handlers.CreateLocation())
					write.Patch("/{id}", handlers.UpdateLocation())
					write.Delete("/{id}", handlers.DeleteLocation())
				})
			})

			// Self-service users are limited to their own rows inside the handlers.
			authed.Route("/volunteers", func(volunteers chi.Router) {
				volunteers.Get("/", handlers.ListVolunteers())
				volunteers.Post("/", handlers.CreateVolunteer())
				volunteers.With(coordinators).Post("/complete", handlers.CompleteEventVolunteers())
				volunteers.Get("/{id}", handlers.GetVolunteer())
				volunteers.Patch("/{id}", handlers.UpdateVolunteer())
				volunteers.Delete("/{id}", handlers.DeleteVolunteer())
				volunteers.Post("/{id}/complete", handlers.CompleteVolunteer())
			})

			authed.Route("/users", func(users chi.Router) {
				users.With(authorities).Get("/", handlers.ListUsers())
				users.Get("/{id}", handlers.GetUser())
				users.Patch("/{id}", handlers.UpdateUser())
				users.With(authorities).Delete("/{id}", handlers.DeleteUser())
			})

			authed.Route("/resources", func(resources chi.Router) {
				resources.Route("/needed", func(needed chi.Router) {
					needed.Get("/", handlers.ListNeeded())
					needed.Get("/{id}", handlers.GetNeeded())

					needed.Group(func(write chi.Router) {
						write.Use(coordinators)
						write.Post("/", handlers.CreateNeeded())
						write.Patch("/{id}", handlers.UpdateNeeded())
						write.Delete("/{id}", handlers.DeleteNeeded())
					})
				})

				resources.Route("/available", func(available chi.Router) {
					available.Use(authorities)
					available.Get("/", handlers.ListAvailable())
					available.Post("/", handlers.CreateAvailable())
					available.Get("/{id}", handlers.GetAvailable())
					available.Patch("/{id}", handlers.UpdateAvailable())
					available.Delete("/{id}", handlers.DeleteAvailable())
					available.Post("/{id}/allocate", handlers.AllocateAvailable())
				})
			})
		})
	})
}
