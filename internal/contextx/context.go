package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// UserKey is the context key under which the session guard stores the
// resolved *user.User for downstream handlers.
const UserKey Key = "user"
