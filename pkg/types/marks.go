package types

import "strings"

// UnmarkPolicy decides when a mark is cleared by a change to its file.
type UnmarkPolicy string

const (
	// UnmarkOnTouch clears the mark on any foreign modification.
	UnmarkOnTouch UnmarkPolicy = "ON_TOUCH"
	// UnmarkOnEmpty clears the mark once the file has no links left.
	UnmarkOnEmpty UnmarkPolicy = "ON_EMPTY"
)

// ParseUnmarkPolicy accepts either policy name, case insensitively.
func ParseUnmarkPolicy(s string) (UnmarkPolicy, bool) {
	switch UnmarkPolicy(strings.ToUpper(strings.TrimSpace(s))) {
	case UnmarkOnTouch:
		return UnmarkOnTouch, true
	case UnmarkOnEmpty:
		return UnmarkOnEmpty, true
	}
	return "", false
}

// MarkEntry is one persisted mark.
type MarkEntry struct {
	Path   string
	Policy UnmarkPolicy
}
