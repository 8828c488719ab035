package globals

import (
	"context"
	"os"
)

// JwtSecret is resolved per call rather than at package init, so a
// JWT_SECRET loaded from .env by godotenv in main is honored.
func JwtSecret() []byte {
	return []byte(envOr("JWT_SECRET", "change_me_in_production"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const EmailKey ContextKey = "email"
const RoleKey ContextKey = "role"

var Ctx = context.Background()
