package api

import (
	"net/http"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func (h *Handlers) HealthCheck() http.HandlerFunc {
	return HealthCheckHandler(h.deps.SQLX, h.deps.Redis, h.deps.UpSince)
}

func (h *Handlers) Register() http.HandlerFunc {
	return RegisterHandler(h.deps.Services.Users, h.deps.Tokens)
}

func (h *Handlers) Login() http.HandlerFunc {
	return LoginHandler(h.deps.Services.Users, h.deps.Tokens)
}

func (h *Handlers) Me() http.HandlerFunc { return MeHandler(h.deps.Services.Users) }

func (h *Handlers) Stats() http.HandlerFunc { return StatsHandler(h.deps.Services.Stats) }

func (h *Handlers) Stream() http.HandlerFunc {
	return StreamHandler(h.deps.Sinks.Broadcaster, defaultPingInterval)
}

// ---- events ----------------------------------------------------------------

func (h *Handlers) ListEvents() http.HandlerFunc  { return ListEventsHandler(h.deps.Services.Events) }
func (h *Handlers) CreateEvent() http.HandlerFunc { return CreateEventHandler(h.deps.Services.Events) }
func (h *Handlers) IngestEvent() http.HandlerFunc { return IngestEventHandler(h.deps.Services.Events) }
func (h *Handlers) GetEvent() http.HandlerFunc    { return GetEventHandler(h.deps.Services.Events) }
func (h *Handlers) UpdateEvent() http.HandlerFunc { return UpdateEventHandler(h.deps.Services.Events) }
func (h *Handlers) CloseEvent() http.HandlerFunc  { return CloseEventHandler(h.deps.Services.Events) }
func (h *Handlers) DeleteEvent() http.HandlerFunc { return DeleteEventHandler(h.deps.Services.Events) }

// ---- locations -------------------------------------------------------------

func (h *Handlers) ListLocations() http.HandlerFunc {
	return ListLocationsHandler(h.deps.Services.Locations)
}
func (h *Handlers) CreateLocation() http.HandlerFunc {
	return CreateLocationHandler(h.deps.Services.Locations)
}
func (h *Handlers) GetLocation() http.HandlerFunc {
	return GetLocationHandler(h.deps.Services.Locations)
}
func (h *Handlers) UpdateLocation() http.HandlerFunc {
	return UpdateLocationHandler(h.deps.Services.Locations)
}
func (h *Handlers) DeleteLocation() http.HandlerFunc {
	return DeleteLocationHandler(h.deps.Services.Locations)
}

// ---- volunteers ------------------------------------------------------------

func (h *Handlers) ListVolunteers() http.HandlerFunc {
	return ListVolunteersHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) CreateVolunteer() http.HandlerFunc {
	return CreateVolunteerHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) CompleteEventVolunteers() http.HandlerFunc {
	return CompleteEventVolunteersHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) GetVolunteer() http.HandlerFunc {
	return GetVolunteerHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) UpdateVolunteer() http.HandlerFunc {
	return UpdateVolunteerHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) CompleteVolunteer() http.HandlerFunc {
	return CompleteVolunteerHandler(h.deps.Services.Volunteers)
}
func (h *Handlers) DeleteVolunteer() http.HandlerFunc {
	return DeleteVolunteerHandler(h.deps.Services.Volunteers)
}

// ---- users -----------------------------------------------------------------

func (h *Handlers) ListUsers() http.HandlerFunc  { return ListUsersHandler(h.deps.Services.Users) }
func (h *Handlers) GetUser() http.HandlerFunc    { return GetUserHandler(h.deps.Services.Users) }
func (h *Handlers) UpdateUser() http.HandlerFunc { return UpdateUserHandler(h.deps.Services.Users) }
func (h *Handlers) DeleteUser() http.HandlerFunc { return DeleteUserHandler(h.deps.Services.Users) }

// ---- resources -------------------------------------------------------------

func (h *Handlers) ListNeeded() http.HandlerFunc {
	return ListNeededHandler(h.deps.Services.Resources)
}
func (h *Handlers) CreateNeeded() http.HandlerFunc {
	return CreateNeededHandler(h.deps.Services.Resources)
}
func (h *Handlers) GetNeeded() http.HandlerFunc {
	return GetNeededHandler(h.deps.Services.Resources)
}
func (h *Handlers) UpdateNeeded() http.HandlerFunc {
	return UpdateNeededHandler(h.deps.Services.Resources)
}
func (h *Handlers) DeleteNeeded() http.HandlerFunc {
	return DeleteNeededHandler(h.deps.Services.Resources)
}
func (h *Handlers) ListAvailable() http.HandlerFunc {
	return ListAvailableHandler(h.deps.Services.Resources)
}
func (h *Handlers) CreateAvailable() http.HandlerFunc {
	return CreateAvailableHandler(h.deps.Services.Resources)
}
func (h *Handlers) GetAvailable() http.HandlerFunc {
	return GetAvailableHandler(h.deps.Services.Resources)
}
func (h *Handlers) UpdateAvailable() http.HandlerFunc {
	return UpdateAvailableHandler(h.deps.Services.Resources)
}
func (h *Handlers) AllocateAvailable() http.HandlerFunc {
	return AllocateAvailableHandler(h.deps.Services.Resources)
}
func (h *Handlers) DeleteAvailable() http.HandlerFunc {
	return DeleteAvailableHandler(h.deps.Services.Resources)
}
