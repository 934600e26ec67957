// Package util provides env, logging and package URL helpers shared by the spog gateway.
package util

import (
	"os"

	"github.com/package-url/packageurl-go"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// AppendUnique appends item unless it is already present, keeping first-seen order
func AppendUnique(slice []string, item string) []string {
	if Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}

// CanonicalPURL re-serializes a PURL in packageurl-go's canonical form.
// Strings that do not parse are returned unchanged.
func CanonicalPURL(purlStr string) string {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return purlStr
	}
	return parsed.ToString()
}
