// Package pirate converts plain English text into pirate speak using a
// data-driven dictionary of phrase substitutions, a suffix rule, and
// randomized exclamation injection.
package pirate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed dictionary.json
var defaultDictionaryJSON []byte

// Dictionary holds the substitution rules. Entries map a lowercase source
// phrase (one or more words separated by single spaces) to its replacement
// phrase. Matching is case-insensitive; replacement casing is derived from
// the matched text, so entries should be stored lowercase except for proper
// nouns ("flag" -> "Jolly Roger").
type Dictionary struct {
	Entries      map[string]string `json:"entries"`
	Exclamations []string          `json:"exclamations"`
}

// MaxPhraseWords returns the word length of the longest entry phrase.
func (d Dictionary) MaxPhraseWords() int {
	max := 0
	for phrase := range d.Entries {
		if n := len(strings.Fields(phrase)); n > max {
			max = n
		}
	}
	return max
}

// Lookup returns the replacement for a normalized phrase key.
func (d Dictionary) Lookup(phrase string) (string, bool) {
	repl, ok := d.Entries[phrase]
	return repl, ok
}

// DefaultDictionary returns the built-in pirate dictionary.
func DefaultDictionary() Dictionary {
	var d Dictionary
	// The embedded table is validated by tests; a decode failure here is a
	// build defect, not a runtime condition.
	if err := json.Unmarshal(defaultDictionaryJSON, &d); err != nil {
		panic(fmt.Sprintf("embedded pirate dictionary is invalid: %v", err))
	}
	return normalizeDictionary(d)
}

// LoadDictionary reads a dictionary from a JSON file.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, err
	}

	var d Dictionary
	if err := json.Unmarshal(data, &d); err != nil {
		return Dictionary{}, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}
	if len(d.Entries) == 0 {
		return Dictionary{}, fmt.Errorf("dictionary %s has no entries", path)
	}
	return normalizeDictionary(d), nil
}

// SaveDictionary writes a dictionary to a JSON file with indentation.
func SaveDictionary(path string, d Dictionary) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// normalizeDictionary lowercases entry keys and collapses internal
// whitespace so lookups built by the tokenizer always hit.
func normalizeDictionary(d Dictionary) Dictionary {
	entries := make(map[string]string, len(d.Entries))
	for phrase, repl := range d.Entries {
		key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if key == "" {
			continue
		}
		entries[key] = repl
	}
	return Dictionary{Entries: entries, Exclamations: append([]string(nil), d.Exclamations...)}
}
