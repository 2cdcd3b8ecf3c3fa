package pane

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+:[A-Za-z0-9_-]+$`)

// ID joins a namespace and a type name into a pane type identifier.
func ID(namespace, name string) string {
	return namespace + ":" + name
}

// ValidIdentifier reports whether id has the form namespace:name.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// SplitIdentifier returns the namespace and name of a valid identifier.
func SplitIdentifier(id string) (namespace, name string, ok bool) {
	if !ValidIdentifier(id) {
		return "", "", false
	}
	namespace, name, _ = strings.Cut(id, ":")
	return namespace, name, true
}

// NewInstanceID returns a fresh pane instance id. UUID v7 is preferred so
// ids sort by creation time; v4 is used if the clock source fails.
func NewInstanceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
