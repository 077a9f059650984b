package constants

import "time"

type (
	APIStatus        string
	CachePrefix      string
	NotificationType string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixStats   CachePrefix = "STATS_"
	CachePrefixGeocode CachePrefix = "GEO_"
	CachePrefixReverse CachePrefix = "GEO_REV_"
)

const (
	NotifyVolunteerCreated   NotificationType = "volunteer.created"
	NotifyVolunteerUpdated   NotificationType = "volunteer.updated"
	NotifyVolunteerCompleted NotificationType = "volunteer.completed"
	NotifyVolunteerDeleted   NotificationType = "volunteer.deleted"
	NotifyEventCreated       NotificationType = "event.created"
	NotifyEventUpdated       NotificationType = "event.updated"
	NotifyEventClosed        NotificationType = "event.closed"
	NotifyEventDeleted       NotificationType = "event.deleted"
	NotifyUserStatusChanged  NotificationType = "user.status_changed"
	NotifyLocationCreated    NotificationType = "location.created"
	NotifyResourceCreated    NotificationType = "resource.created"
	NotifyResourceUpdated    NotificationType = "resource.updated"
	NotifyResourceDeleted    NotificationType = "resource.deleted"
	NotifyResourceAllocated  NotificationType = "resource.allocated"
)

const (
	NotificationStream    = "mayday:notifications"
	NotificationStreamMax = 10000

	DefaultPageLimit = 100
	MaxPageLimit     = 1000

	StatsCacheTTL   = 5 * time.Second
	GeocodeCacheTTL = 24 * time.Hour
)
