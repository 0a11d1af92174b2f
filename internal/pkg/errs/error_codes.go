/*
Package errs provides the application's error type and error-code constants.

These codes identify specific business or system failures both inside the
server and on the wire to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after valid JSON.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Messaging Errors
const (
	// ErrEmptyMessage indicates a chat message with no text content.
	ErrEmptyMessage = 2001

	// ErrMessageTooLong indicates message text over the maximum length.
	ErrMessageTooLong = 2002
)

// 3xxx: Identity and Session Errors
const (
	// ErrInvalidUsername indicates a display name outside the allowed format.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates a password outside the allowed length range.
	ErrInvalidPassword = 3002

	// ErrUserAlreadyExists indicates the display name is already registered.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials covers both unknown user and wrong password.
	// The two cases deliberately share one code so responses do not reveal
	// which half of the credential pair failed.
	ErrInvalidCredentials = 3004

	// ErrUnauthorized indicates a request without a valid session.
	ErrUnauthorized = 3005
)

// 4xxx: Upload Errors
const (
	// ErrNoFileUploaded indicates a profile upload request missing its file part.
	ErrNoFileUploaded = 4001

	// ErrFileTooLarge indicates an uploaded file over the size limit.
	ErrFileTooLarge = 4002

	// ErrUnsupportedFileType indicates an uploaded file with a disallowed type.
	ErrUnsupportedFileType = 4003

	// ErrFileStorageFailed indicates the blob store rejected or failed the upload.
	ErrFileStorageFailed = 4004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
