package subtitle

import (
	"fmt"
	"time"
)

// Cue is one timed subtitle entry. Index is carried from the input for
// reference only; Encode re-derives indices from cue order so malformed or
// duplicate input indices never propagate.
type Cue struct {
	Index int           // index as it appeared in the source, not trusted
	Start time.Duration // start timestamp
	End   time.Duration // end timestamp, >= Start
	Text  string        // text lines joined with \n
}

// File is a parsed subtitle container.
type File struct {
	Cues     []Cue
	Language string // ISO 639-1 code detected from cue text, "" if unknown
}

// ParseError reports a malformed subtitle container. LineNum is the
// 1-based line of the offending block in the source.
type ParseError struct {
	LineNum int
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("subtitle parse error at line %d: %s", e.LineNum, e.Msg)
}
