package config

import (
	"os"
	"strings"
)

// GetVersion returns the service version: the APP_VERSION environment
// variable when set by CI, otherwise the contents of the VERSION file,
// otherwise "dev".
func GetVersion() string {
	if envVersion := os.Getenv("APP_VERSION"); envVersion != "" {
		return envVersion
	}
	if data, err := os.ReadFile("VERSION"); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	return "dev"
}
