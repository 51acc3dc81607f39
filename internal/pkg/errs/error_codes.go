/*
Package errs provides the application's error type and business error codes.

These codes identify specific business or system errors both inside the
server and in responses and WebSocket error events sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Message Business Logic Errors
const (
	// ErrRoomNameInvalid indicates an empty or malformed room name.
	ErrRoomNameInvalid = 2101

	// ErrNotInRoom indicates a room-scoped action from a connection that has
	// not joined a room.
	ErrNotInRoom = 2102

	// ErrMessageContentTooLong indicates the message text exceeded the length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageContentEmpty indicates a send attempt with no text.
	ErrMessageContentEmpty = 2202

	// ErrMessageNotDelivered indicates the message could not be stored, so it was not broadcast.
	ErrMessageNotDelivered = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates the registration username failed validation.
	ErrInvalidUsername = 3001

	// ErrInvalidEmail indicates the registration email failed validation.
	ErrInvalidEmail = 3002

	// ErrInvalidPassword indicates the password failed length validation.
	ErrInvalidPassword = 3003

	// ErrUserAlreadyExists indicates the username or email is already taken.
	ErrUserAlreadyExists = 3004

	// ErrInvalidCredentials indicates a login with a wrong email or password.
	ErrInvalidCredentials = 3005

	// ErrUnauthorized indicates a missing or invalid credential on a protected route.
	ErrUnauthorized = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
