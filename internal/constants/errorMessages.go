package constants

const (
	MsgInvalidBody        = "Invalid request body"
	MsgInvalidID          = "Invalid id"
	MsgInvalidQuery       = "Invalid query parameters"
	MsgUnauthorized       = "Unauthorized"
	MsgMissingClaims      = "Unauthorized: missing claims"
	MsgForbidden          = "Forbidden: insufficient role"
	MsgTooManyRequests    = "Too many requests"
	MsgInternal           = "Internal server error"
	MsgEventNotFound      = "Event not found"
	MsgVolunteerNotFound  = "Volunteer not found"
	MsgUserNotFound       = "User not found"
	MsgLocationNotFound   = "Location not found"
	MsgResourceNotFound   = "Resource not found"
	MsgEmailTaken         = "Email already registered"
	MsgInvalidCredentials = "Invalid email or password"
	MsgConcurrentUpdate   = "Record was modified concurrently, retry the request"
)
