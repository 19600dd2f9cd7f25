package catalog

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/songsnap/songsnap/internal/shared"
)

const defaultMatchThreshold = 0.85

// cleanTitle strips bracketed suffixes ("(Remastered 2009)", "[Live]") that
// hurt search relevance while keeping the leading title text.
func cleanTitle(title string) string {
	if idx := strings.IndexAny(title, "(["); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return strings.TrimSpace(title)
}

// bestMatch picks the candidate for the wanted title/artist pair. An exact
// normalized track-key match wins outright; otherwise candidates are scored
// with Jaro-Winkler similarity and the highest scorer at or above the
// threshold is returned, or nil when nothing scores well enough.
func bestMatch(title, artist string, candidates []Candidate, threshold float64) *Candidate {
	wantKey := shared.NormalizeTrackKey(cleanTitle(title), artist)
	for i := range candidates {
		cand := &candidates[i]
		if shared.NormalizeTrackKey(cleanTitle(cand.DisplayName), cand.Artist) == wantKey {
			return cand
		}
	}

	want := strings.ToLower(artist + " " + cleanTitle(title))
	jw := metrics.NewJaroWinkler()

	var best *Candidate
	var bestScore float64

	for i := range candidates {
		cand := candidates[i]
		got := strings.ToLower(cand.Artist + " " + cleanTitle(cand.DisplayName))
		score := strutil.Similarity(want, got, jw)
		if score >= threshold && score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	return best
}
