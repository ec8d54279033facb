package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid credentials"
	errUserAlreadyExists  = "User already exists"
	errUserNotFound       = "User not found"
	errTokenInvalid       = "Token is invalid or expired"
	errRefreshInvalid     = "Refresh token is invalid or expired"
	errResetInvalid       = "Reset token is invalid or expired"
	errSessionNotFound    = "Session not found"
	errMissingAuthHeader  = "Authorization header missing or malformed"
)
