// Package validate checks resource references before they reach a query.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/nifrel/internal/graph"
	"golang.org/x/net/idna"
)

// ErrInvalidReference is returned for references that cannot be used as an IRI term
var ErrInvalidReference = errors.New("invalid resource reference")

var scheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// Reference checks that ref can be embedded as an IRI term in a lookup query.
//
// ref must be absolute. A host holding non-ASCII characters is converted to its
// ASCII form; any other reference is returned unchanged, including host case and
// percent signs.
func Reference(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidReference)
	}

	if _, err := graph.IRI(ref); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	if !scheme.MatchString(ref) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidReference, ref)
	}

	host := hostOf(ref)
	if host == "" || isASCII(host) {
		return ref, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: host %q: %v", ErrInvalidReference, host, err)
	}

	return strings.Replace(ref, host, ascii, 1), nil
}

// hostOf returns the host of a hierarchical reference, or "" for opaque ones
// such as urn: references
func hostOf(ref string) string {
	_, rest, _ := strings.Cut(ref, ":")
	if !strings.HasPrefix(rest, "//") {
		return ""
	}

	authority := rest[2:]
	if i := strings.IndexAny(authority, "/?#"); i >= 0 {
		authority = authority[:i]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if strings.HasPrefix(authority, "[") {
		// IPv6 literal
		return ""
	}
	if i := strings.LastIndex(authority, ":"); i >= 0 {
		authority = authority[:i]
	}
	return authority
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsValid reports whether ref passes Reference
func IsValid(ref string) bool {
	_, err := Reference(ref)
	return err == nil
}
