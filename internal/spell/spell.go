// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spell corrects misspelled query words against a vocabulary
// built from the advisor corpus. Corrections follow the classic
// edit-distance approach: a known word is kept, otherwise the most
// frequent known word one edit away wins, then two edits away.
package spell

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// VocabularySource supplies the corpus texts a Checker learns from.
type VocabularySource interface {
	Vocabulary(ctx context.Context) ([]string, error)
}

// Checker holds word frequencies for a corpus. It is immutable after
// construction and safe for concurrent use.
type Checker struct {
	counts map[string]int
}

// New builds a Checker from raw texts.
func New(texts []string) *Checker {
	c := &Checker{counts: make(map[string]int)}
	for _, t := range texts {
		for _, w := range wordPattern.FindAllString(strings.ToLower(t), -1) {
			c.counts[w]++
		}
	}
	return c
}

// Load builds a Checker from every text src provides.
func Load(ctx context.Context, src VocabularySource) (*Checker, error) {
	texts, err := src.Vocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	return New(texts), nil
}

// Size returns the number of distinct words known.
func (c *Checker) Size() int { return len(c.counts) }

// Known reports whether word (case-insensitive) is in the vocabulary.
func (c *Checker) Known(word string) bool {
	_, ok := c.counts[strings.ToLower(word)]
	return ok
}

// Correct returns text with each alphabetic word replaced by its most
// likely spelling. Punctuation and spacing are left as written, so text
// with nothing to correct comes back unchanged. Short all-caps inputs are
// treated as acronyms.
func (c *Checker) Correct(text string) string {
	if len([]rune(text)) < 4 && strings.ToUpper(text) == text {
		return text
	}
	return wordPattern.ReplaceAllStringFunc(text, c.correctToken)
}

func (c *Checker) correctToken(tok string) string {
	if !isAlpha(tok) || c.Known(tok) {
		return tok
	}
	corrected := c.Word(strings.ToLower(tok))
	switch {
	case isTitle(tok):
		return toTitle(corrected)
	case strings.ToUpper(tok) == tok:
		return strings.ToUpper(corrected)
	}
	return corrected
}

// Word returns the best correction for a single lowercase word, or the
// word itself when nothing within two edits is known. Equal frequencies
// resolve to the lexically smallest candidate.
func (c *Checker) Word(word string) string {
	if _, ok := c.counts[word]; ok {
		return word
	}
	e1 := edits1(word)
	if best, ok := c.best(e1); ok {
		return best
	}

	e2 := make(map[string]struct{})
	for w := range e1 {
		for w2 := range edits1(w) {
			if _, ok := c.counts[w2]; ok {
				e2[w2] = struct{}{}
			}
		}
	}
	if best, ok := c.best(e2); ok {
		return best
	}
	return word
}

func (c *Checker) best(candidates map[string]struct{}) (string, bool) {
	var (
		best  string
		count int
	)
	for w := range candidates {
		n, ok := c.counts[w]
		if !ok {
			continue
		}
		if n > count || (n == count && w < best) {
			best, count = w, n
		}
	}
	return best, count > 0
}

// edits1 returns every string one delete, transpose, replace, or insert
// away from word.
func edits1(word string) map[string]struct{} {
	r := []rune(word)
	out := make(map[string]struct{}, 54*len(r)+25)
	for i := 0; i <= len(r); i++ {
		left, right := string(r[:i]), r[i:]
		if len(right) > 0 {
			out[left+string(right[1:])] = struct{}{}
		}
		if len(right) > 1 {
			out[left+string(right[1])+string(right[0])+string(right[2:])] = struct{}{}
		}
		for _, l := range letters {
			if len(right) > 0 {
				out[left+string(l)+string(right[1:])] = struct{}{}
			}
			out[left+string(l)+string(right)] = struct{}{}
		}
	}
	return out
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isTitle(s string) bool {
	for i, r := range []rune(s) {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func toTitle(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
