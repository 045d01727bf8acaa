// Package env reads individual environment variables outside the
// envconfig-loaded configuration, e.g. before config parsing runs.
package env

import "os"

// Get returns the variable's value, or fallback when unset or blank.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
