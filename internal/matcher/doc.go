// Package matcher locates a song from one catalog in another using metadata alone.
//
// # Sanitizer
//
// [Sanitizer] normalizes artist and title strings into a lowest common form: featuring credits and
// secondary artists are dropped, apostrophes removed, other punctuation turned into spaces and a leading
// "The " stripped. Every sanitizer is idempotent. The patterns live in [Rules] and are passed in at construction.
//
// # Scorer
//
// [Scorer] compares a target [models.TrackRef] with a [models.Candidate]. A candidate is rejected when exactly
// one side mentions "Remix" or when its best artist similarity is below the threshold (0.5 by default).
// Otherwise the score is the mean of the artist, title and album similarities.
//
// Similarity is computed by a [strutil.StringMetric]; the default is [RatcliffObershelp].
//
// # Resolver
//
// [Resolver] runs up to three searches against a [Searcher], stopping at the first acceptable candidate:
//
//  1. artist:<artist> track:<title> using the strings as given
//  2. the same query with sanitized artist and title
//  3. track:<sanitized title>
//
// All stages score against the original [models.TrackRef]. A failed search counts as an empty result for its stage.
package matcher
