// Package pathmap rewrites provider-reported paths into locally mounted
// paths using ordered prefix rules. Sonarr/Radarr report file locations as
// seen inside their own containers; a mapping translates those prefixes so
// the scanner can reach the files on its own filesystem.
package pathmap

import (
	"path"
	"strings"
)

// Mapping is one prefix-rewrite rule.
type Mapping struct {
	RemotePrefix string `json:"remote_prefix"`
	LocalPrefix  string `json:"local_prefix"`
}

// Resolve maps remotePath to a local path. The mapping whose remote prefix
// is the longest path-segment prefix of remotePath wins; the remainder is
// preserved verbatim. Returns ok=false when no mapping matches; callers
// must not fall back to the raw remote path.
func Resolve(remotePath string, mappings []Mapping) (string, bool) {
	remotePath = normalize(remotePath)
	if remotePath == "" {
		return "", false
	}

	best := -1
	bestLen := -1
	for i, m := range mappings {
		remote := strings.TrimRight(normalize(m.RemotePrefix), "/")
		if remote == "" || m.LocalPrefix == "" {
			continue
		}
		if !segmentPrefix(remotePath, remote) {
			continue
		}
		// Longest prefix wins; earlier configuration order breaks ties.
		if len(remote) > bestLen {
			best = i
			bestLen = len(remote)
		}
	}
	if best < 0 {
		return "", false
	}

	m := mappings[best]
	remote := strings.TrimRight(normalize(m.RemotePrefix), "/")
	local := strings.TrimRight(normalize(m.LocalPrefix), "/")
	remainder := remotePath[len(remote):]
	return path.Clean(local + remainder), true
}

// segmentPrefix reports whether prefix matches p on a whole path-segment
// boundary, so "/tv" matches "/tv/show" but never "/tvshows".
func segmentPrefix(p, prefix string) bool {
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// normalize converts separators to forward slashes and trims whitespace.
func normalize(p string) string {
	p = strings.TrimSpace(p)
	return strings.ReplaceAll(p, "\\", "/")
}
