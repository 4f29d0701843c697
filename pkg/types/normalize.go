package types

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var slashRun = regexp.MustCompile(`[\\/]+`)

// NormalizePath turns a user or file supplied vault path into canonical form:
// NFC unicode, forward slashes, no duplicate, leading or trailing slashes.
// The root normalizes to the empty string.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\u00a0", " ")
	p = slashRun.ReplaceAllString(p, "/")
	p = strings.Trim(p, "/")
	return norm.NFC.String(p)
}
