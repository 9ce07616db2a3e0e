// Package agent implements the push delivery agent core: push-message
// normalization, notification-options construction with multi-action support
// and click attribution, interaction resolution, and the subscription
// lifecycle handler. The agent is purely event-driven; it holds no state of
// its own between events.
package agent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackSlug is the action identifier used when a label produces no slug
// at all.
const FallbackSlug = "abrir"

// deaccent decomposes characters (NFD) and strips the combining marks, so
// accented letters collapse to their base letters before slugging.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a stable, URL- and DOM-safe identifier from an action
// button label: lowercase, accents stripped, every run of non-alphanumeric
// characters collapsed to a single hyphen, edge hyphens trimmed. Empty input
// -- or input that slugs down to nothing -- yields FallbackSlug, keeping the
// invariant that every rendered action has a non-empty identifier.
//
// Slugify is deterministic and has no side effects.
func Slugify(label string) string {
	s := label
	if strings.TrimSpace(s) == "" {
		s = FallbackSlug
	}

	s = strings.ToLower(s)
	if stripped, _, err := transform.String(deaccent, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if out == "" {
		return FallbackSlug
	}
	return out
}
