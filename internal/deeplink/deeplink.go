// Package deeplink recognises password-reset links and tracks the link the
// client was started with.
package deeplink

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// resetPattern matches "#/password/reset/confirm/<uid>/<token>".
var resetPattern = regexp.MustCompile(`^#?/password/reset/confirm/([\w-]+)/([\w-]+)/?$`)

// Params are the two opaque values carried by a reset link.
type Params struct {
	UID   string
	Token string
}

// Parse matches fragment against the reset pattern.
func Parse(fragment string) (Params, bool) {
	m := resetPattern.FindStringSubmatch(fragment)
	if m == nil {
		return Params{}, false
	}
	return Params{UID: m[1], Token: m[2]}, true
}

// FragmentOf returns the "#..." part of link. A link that is already a bare
// fragment is returned as is; a link without a fragment yields "".
func FragmentOf(link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "#") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil || u.Fragment == "" {
		return ""
	}
	return "#" + u.Fragment
}

// Location is where the start-up link lives. Clear removes every trace of it
// so a restart does not replay the reset flow.
type Location interface {
	Fragment() string
	Clear()
}

// MemoryLocation is a Location held in process memory.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

// NewLocation returns a Location for link ("" for none).
func NewLocation(link string) *MemoryLocation {
	return &MemoryLocation{fragment: FragmentOf(link)}
}

// Fragment implements Location.
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// Clear implements Location.
func (l *MemoryLocation) Clear() {
	l.mu.Lock()
	l.fragment = ""
	l.mu.Unlock()
}
