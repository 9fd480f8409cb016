// Package subtitle decodes and encodes SRT subtitle containers. Decoding
// preserves timestamps and text exactly; encoding renumbers cues
// sequentially so the output is always well-formed regardless of the input
// indexing.
package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// SRT time line: 00:02:16,612 --> 00:02:19,376 (a dot before the
// milliseconds is tolerated on input, comma is always written on output).
var timeLinePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})$`)

// Decode parses an SRT stream into cues. Blocks are separated by blank
// lines; each block is an optional index line, a mandatory time-range line,
// and the remaining text lines. A block without a valid time-range line
// fails with *ParseError.
func Decode(r io.Reader) (*File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	cues := make([]Cue, 0)

	var block []string
	blockStart := 0
	lineNum := 0

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block, blockStart)
		if err != nil {
			return err
		}
		cues = append(cues, cue)
		block = nil
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			blockStart = lineNum
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subtitle stream: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &File{
		Cues:     cues,
		Language: detectLanguage(cues),
	}, nil
}

// DecodeFile reads and decodes the SRT file at path.
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func parseBlock(block []string, startLine int) (Cue, error) {
	cur := 0
	cue := Cue{}

	// Index line is optional and informational only.
	if idx, err := strconv.Atoi(strings.TrimSpace(block[cur])); err == nil {
		cue.Index = idx
		cur++
	}

	if cur >= len(block) {
		return Cue{}, &ParseError{LineNum: startLine, Msg: "block has no time-range line"}
	}

	timeLine := strings.TrimSpace(block[cur])
	start, end, ok := parseTimeLine(timeLine)
	if !ok {
		return Cue{}, &ParseError{LineNum: startLine + cur, Msg: fmt.Sprintf("invalid time-range line %q", timeLine)}
	}
	if end < start {
		return Cue{}, &ParseError{LineNum: startLine + cur, Msg: fmt.Sprintf("cue ends before it starts: %q", timeLine)}
	}
	cue.Start = start
	cue.End = end
	cur++

	// Text lines are kept byte-for-byte; indentation is part of the cue.
	cue.Text = strings.Join(block[cur:], "\n")
	return cue, nil
}

func parseTimeLine(line string) (time.Duration, time.Duration, bool) {
	matches := timeLinePattern.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, false
	}

	parse := func(h, m, s, ms string) time.Duration {
		hv, _ := strconv.Atoi(h)
		mv, _ := strconv.Atoi(m)
		sv, _ := strconv.Atoi(s)
		msv, _ := strconv.Atoi(ms)
		return time.Duration(hv)*time.Hour +
			time.Duration(mv)*time.Minute +
			time.Duration(sv)*time.Second +
			time.Duration(msv)*time.Millisecond
	}

	return parse(matches[1], matches[2], matches[3], matches[4]),
		parse(matches[5], matches[6], matches[7], matches[8]),
		true
}

// Encode writes cues as SRT. Indices are re-derived 1..N from cue order,
// timestamps are emitted unchanged, and cues are separated by exactly one
// blank line.
func Encode(w io.Writer, f *File) error {
	if f == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	bw := bufio.NewWriter(w)
	for i, cue := range f.Cues {
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
		fmt.Fprintf(bw, "%s\n\n", cue.Text)
	}
	return bw.Flush()
}

// EncodeFile encodes cues to the file at path, creating or truncating it.
func EncodeFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FormatTimestamp renders a duration in SRT time format.
func FormatTimestamp(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}

// detectLanguage picks the dominant language of the cue text.
func detectLanguage(cues []Cue) string {
	if len(cues) == 0 {
		return ""
	}

	langCount := make(map[string]int)
	for _, cue := range cues {
		iso := whatlanggo.DetectLang(cue.Text).Iso6391()
		if iso == "" {
			continue
		}
		langCount[iso]++
	}

	var topLang string
	var topCount int
	for lang, count := range langCount {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}
	if topLang == "" {
		return ""
	}

	// Normalize through x/text so aliases collapse to a base code.
	tag, err := language.Parse(topLang)
	if err != nil {
		return topLang
	}
	base, _ := tag.Base()
	return base.String()
}
