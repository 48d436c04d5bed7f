// Package target derives the two views of a scan target: the full URL
// used by HTTP checks and the bare host used by socket checks.
package target

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSchemeSeparator is returned for a target without "//". It is the one
// error that aborts a whole scan.
var ErrNoSchemeSeparator = errors.New("target: missing \"//\" scheme separator")

// Target is a scan target. URL is the raw input, unvalidated and
// unnormalized; Host is hostname[:port].
type Target struct {
	URL  string `json:"url"`
	Host string `json:"host"`
}

// Parse builds a Target from the raw URL string.
func Parse(raw string) (Target, error) {
	host, err := BareHost(raw)
	if err != nil {
		return Target{}, err
	}
	return Target{URL: raw, Host: host}, nil
}

// BareHost returns the segment between the first "//" and the next "/",
// "?" or "#".
func BareHost(raw string) (string, error) {
	_, rest, ok := strings.Cut(raw, "//")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoSchemeSeparator, raw)
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest, nil
}

// String returns the full URL.
func (t Target) String() string {
	return t.URL
}
