package middleware

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Constants for middleware keys and values
const (
	// --- Logger Keys ---
	RequestLoggerKey ContextKey = "requestLogger"
	RequestIDHeader             = "X-Request-ID" // Header name

	// --- JWT Middleware Keys ---
	AuthorizationHeader            = "Authorization"
	BearerPrefix                   = "Bearer "
	UserIDKey           ContextKey = "userID"
	UserEmailKey        ContextKey = "userEmail"

	// --- Request ID Key ---
	RequestIDKey ContextKey = "requestID" // Key to store the request ID string in Locals
)
