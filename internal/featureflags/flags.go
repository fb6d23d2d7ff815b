// Package featureflags reads boolean switches from FLAG_<NAME> environment variables.
package featureflags

import (
	"os"
	"strings"
)

const (
	// StrictSessionGate makes the page gate verify the session token instead of
	// only checking that the cookie is present.
	StrictSessionGate = "STRICT_SESSION_GATE"
	// AutoMigrate runs the goose migrations on server start.
	AutoMigrate = "AUTO_MIGRATE"
)

// Known lists the flags the server reports at startup.
var Known = []string{StrictSessionGate, AutoMigrate}

// Enabled reports whether FLAG_<NAME> is set to 1, true, yes or on (any case).
func Enabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FLAG_" + strings.ToUpper(name)))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Snapshot returns the state of every known flag.
func Snapshot() map[string]bool {
	out := make(map[string]bool, len(Known))
	for _, name := range Known {
		out[name] = Enabled(name)
	}
	return out
}
