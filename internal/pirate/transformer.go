package pirate

import (
	"regexp"
	"strings"
	"unicode"
)

// MarkupPolicy controls how inline formatting tags inside subtitle text are
// treated during substitution.
type MarkupPolicy int

const (
	// MarkupOpaque passes <...> and {...} spans through untouched. Tags are
	// never substituted or suffix-rewritten and they break multi-word phrase
	// adjacency. This is the default.
	MarkupOpaque MarkupPolicy = iota
	// MarkupAsText tokenizes tag contents as ordinary words.
	MarkupAsText
)

// RandSource supplies the randomness for exclamation injection. *rand.Rand
// satisfies it; tests inject a seeded or scripted source for reproducible
// output. A nil source disables injection entirely.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

// Transformer rewrites English text into pirate speak. It is a pure
// function of its inputs: the dictionary, the suffix rule, the markup
// policy, and the injected random source. No state is kept between calls.
type Transformer struct {
	dict     Dictionary
	maxWords int
	markup   MarkupPolicy
	rand     RandSource
	chance   float64
}

// TransformOption configures a Transformer.
type TransformOption func(*Transformer)

// WithExclamations enables exclamation injection after sentence-ending
// punctuation with the given probability per sentence.
func WithExclamations(src RandSource, chance float64) TransformOption {
	return func(t *Transformer) {
		t.rand = src
		t.chance = chance
	}
}

// WithMarkupPolicy overrides the default MarkupOpaque policy.
func WithMarkupPolicy(policy MarkupPolicy) TransformOption {
	return func(t *Transformer) {
		t.markup = policy
	}
}

func NewTransformer(dict Dictionary, opts ...TransformOption) *Transformer {
	t := &Transformer{
		dict:     dict,
		maxWords: dict.MaxPhraseWords(),
		markup:   MarkupOpaque,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts text to pirate speak. Dictionary phrases are applied
// longest-match-first at each position; unmatched words ending in "ing"
// get the in' suffix; exclamations are then injected at sentence boundaries
// when a random source is configured.
func (t *Transformer) Transform(text string) string {
	if text == "" {
		return text
	}

	tokens := tokenize(text, t.markup)

	var out strings.Builder
	out.Grow(len(text) + len(text)/4)

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if tok.kind != tokenWord {
			out.WriteString(tok.text)
			i++
			continue
		}

		// Collect the run of words reachable from position i across
		// whitespace-only separators; punctuation and markup break phrases.
		wordIdx := []int{i}
		for j := i; len(wordIdx) < t.maxWords; {
			if j+2 >= len(tokens) || tokens[j+1].kind != tokenSpace || tokens[j+2].kind != tokenWord {
				break
			}
			j += 2
			wordIdx = append(wordIdx, j)
		}

		matched := false
		for n := len(wordIdx); n >= 1; n-- {
			parts := make([]string, n)
			for k := 0; k < n; k++ {
				parts[k] = strings.ToLower(tokens[wordIdx[k]].text)
			}
			repl, ok := t.dict.Lookup(strings.Join(parts, " "))
			if !ok {
				continue
			}
			span := make([]string, n)
			for k := 0; k < n; k++ {
				span[k] = tokens[wordIdx[k]].text
			}
			out.WriteString(applyCase(repl, span))
			i = wordIdx[n-1] + 1
			matched = true
			break
		}
		if matched {
			continue
		}

		out.WriteString(applySuffixRule(tok.text))
		i++
	}

	return t.injectExclamations(out.String())
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenOther
)

type token struct {
	kind tokenKind
	text string
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\''
}

// tokenize splits text into word, whitespace, and literal passthrough
// spans. Under MarkupOpaque, <...> and {...} spans become single literal
// tokens so tag contents are never treated as words.
func tokenize(text string, markup MarkupPolicy) []token {
	runes := []rune(text)
	tokens := make([]token, 0, len(runes)/4+1)

	for i := 0; i < len(runes); {
		r := runes[i]

		if markup == MarkupOpaque && (r == '<' || r == '{') {
			closer := '>'
			if r == '{' {
				closer = '}'
			}
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == closer {
					end = j
					break
				}
			}
			if end >= 0 {
				tokens = append(tokens, token{kind: tokenOther, text: string(runes[i : end+1])})
				i = end + 1
				continue
			}
		}

		switch {
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		case unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenSpace, text: string(runes[i:j])})
			i = j
		default:
			j := i
			for j < len(runes) && !isWordRune(runes[j]) && !unicode.IsSpace(runes[j]) {
				if markup == MarkupOpaque && (runes[j] == '<' || runes[j] == '{') && j > i {
					break
				}
				j++
			}
			tokens = append(tokens, token{kind: tokenOther, text: string(runes[i:j])})
			i = j
		}
	}

	return tokens
}

// applyCase shapes the replacement after the matched span's case pattern:
// an all-caps span yields an all-caps replacement, a capitalized first word
// capitalizes the replacement's first rune, anything else keeps the
// replacement as stored.
func applyCase(repl string, span []string) string {
	joined := strings.Join(span, "")
	hasLetter := false
	allUpper := true
	for _, r := range joined {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if !unicode.IsUpper(r) {
			allUpper = false
			break
		}
	}
	if hasLetter && allUpper {
		return strings.ToUpper(repl)
	}

	first, _ := firstLetter(span[0])
	if first != 0 && unicode.IsUpper(first) {
		return capitalizeFirst(repl)
	}
	return repl
}

func firstLetter(s string) (rune, bool) {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}

func capitalizeFirst(s string) string {
	for i, r := range s {
		return s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// applySuffixRule rewrites a trailing "ing" to "in'" on words the
// dictionary did not cover (runnin', sailin', ...).
func applySuffixRule(word string) string {
	if len(word) <= 3 {
		return word
	}
	lower := strings.ToLower(word)
	if !strings.HasSuffix(lower, "ing") {
		return word
	}
	base := word[:len(word)-3]
	if word[len(word)-3:] == "ING" {
		return base + "IN'"
	}
	return base + "in'"
}

var sentenceEndPattern = regexp.MustCompile(`[.!?]+`)

// injectExclamations appends a random pirate exclamation after
// sentence-ending punctuation with the configured probability.
func (t *Transformer) injectExclamations(text string) string {
	if t.rand == nil || t.chance <= 0 || len(t.dict.Exclamations) == 0 {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return text
	}

	locs := sentenceEndPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var out strings.Builder
	prev := 0
	for _, loc := range locs {
		out.WriteString(text[prev:loc[1]])
		prev = loc[1]
		if t.rand.Float64() < t.chance {
			out.WriteString(" ")
			out.WriteString(t.dict.Exclamations[t.rand.Intn(len(t.dict.Exclamations))])
		}
	}
	out.WriteString(text[prev:])
	return out.String()
}
