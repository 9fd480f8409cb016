package file

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PirateMarker is the segment inserted into output subtitle filenames.
const PirateMarker = "pirate"

// Matches a trailing language code plus optional subtitle tags on a file
// stem, e.g. ".en", ".eng.hi", ".en.sdh". Media players use these suffixes
// to identify the subtitle language, so they must stay at the end.
var langSuffixPattern = regexp.MustCompile(`(?i)(\.(en|eng|english))(\.(hi|sdh|forced|cc|default))?$`)

// PirateSidecarPath derives the output path for a translated subtitle by
// inserting the pirate marker before the final extension, keeping any
// language/tag suffixes after the marker:
//
//	movie.srt        -> movie.pirate.srt
//	movie.en.srt     -> movie.pirate.en.srt
//	movie.en.sdh.srt -> movie.pirate.en.sdh.srt
func PirateSidecarPath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	if loc := langSuffixPattern.FindStringIndex(stem); loc != nil {
		return stem[:loc[0]] + "." + PirateMarker + stem[loc[0]:] + ext
	}
	return stem + "." + PirateMarker + ext
}

// IsPirateSidecar reports whether the filename already carries the pirate
// marker, so scanners do not re-translate their own output.
func IsPirateSidecar(name string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(name)), "."+PirateMarker+".")
}

// ReplaceExt swaps the extension of path with ext (leading dot optional).
// A path without an extension gets ext appended.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}
	return filepath.Join(dir, filename[:lastDot]+ext)
}
