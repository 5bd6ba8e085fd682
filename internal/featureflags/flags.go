package featureflags

import (
	"os"
	"strings"
)

// Known flags. DISABLE_AUTOREPLY turns off the simulated seller replies in
// conversations; RESEED forces the catalog seed to run even when products
// already exist.
const (
	DisableAutoReply = "DISABLE_AUTOREPLY"
	Reseed           = "RESEED"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
