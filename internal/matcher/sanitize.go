package matcher

import (
	"regexp"
	"strings"
)

// Rules holds the patterns used by a [Sanitizer].
type Rules struct {
	Apostrophe       *regexp.Regexp   // removed outright
	Disallowed       *regexp.Regexp   // replaced with a space
	LeadingArticle   *regexp.Regexp   // stripped once from the start
	Featuring        *regexp.Regexp   // removed from titles
	ArtistSeparators []*regexp.Regexp // an artist credit is cut at the earliest match of any of these
}

// DefaultRules returns the standard sanitization patterns.
func DefaultRules() Rules {
	return Rules{
		Apostrophe:     regexp.MustCompile(`'`),
		Disallowed:     regexp.MustCompile(`[^A-Za-zÀ-ÿ0-9_ \-]`),
		LeadingArticle: regexp.MustCompile(`^The `),
		Featuring:      regexp.MustCompile(` [\(\[][Ff](?:ea)?t\.? .*[\)\]]`),
		ArtistSeparators: []*regexp.Regexp{
			regexp.MustCompile(`, `),
			regexp.MustCompile(` & `),
			regexp.MustCompile(` x `),
			regexp.MustCompile(` vs\.? `),
		},
	}
}

// Sanitizer normalizes artist and title strings for catalog search.
//
// All methods are pure and total.
type Sanitizer struct {
	rules Rules
}

// NewSanitizer creates a [Sanitizer] from rules.
func NewSanitizer(rules Rules) *Sanitizer {
	return &Sanitizer{rules: rules}
}

// Artist reduces a multi-artist credit to its first artist and normalizes it.
func (s *Sanitizer) Artist(artist string) string {
	return fixpoint(artist, func(v string) string {
		return s.common(s.firstArtist(v))
	})
}

// Title drops a featuring credit and normalizes the rest.
func (s *Sanitizer) Title(title string) string {
	return fixpoint(title, func(v string) string {
		return s.common(s.rules.Featuring.ReplaceAllString(v, ""))
	})
}

// Album applies the common transform only.
func (s *Sanitizer) Album(album string) string {
	return fixpoint(album, s.common)
}

// firstArtist returns the text before the earliest separator found in artist.
func (s *Sanitizer) firstArtist(artist string) string {
	cut := len(artist)
	for _, sep := range s.rules.ArtistSeparators {
		if loc := sep.FindStringIndex(artist); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return artist[:cut]
}

func (s *Sanitizer) common(v string) string {
	v = s.rules.Apostrophe.ReplaceAllString(v, "")
	v = s.rules.Disallowed.ReplaceAllString(v, " ")
	v = strings.Join(strings.Fields(v), " ")
	return s.rules.LeadingArticle.ReplaceAllString(v, "")
}

// fixpoint applies fn until the value stops changing.
//
// Each changing pass shortens the string or removes a disallowed rune, so the loop terminates.
func fixpoint(v string, fn func(string) string) string {
	for {
		next := fn(v)
		if next == v {
			return v
		}
		v = next
	}
}
