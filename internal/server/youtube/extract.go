// Package youtube resolves video links to ids and fetches their metadata
// from the YouTube Data API.
package youtube

import "regexp"

// videoIDPattern matches the id after "v=" (watch URLs) or "be/" (youtu.be
// short links). The first match anywhere in the input wins.
var videoIDPattern = regexp.MustCompile(`(?:v=|be/)([A-Za-z0-9_-]{11})`)

// ExtractVideoID returns the 11-character video id found in raw.
func ExtractVideoID(raw string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}
