// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChecker() *Checker {
	return New([]string{
		"Machine Learning for Neural Networks",
		"Graph neural networks; message passing.",
		"Interests: robotics, machine vision",
	})
}

func TestNewCountsWords(t *testing.T) {
	c := testChecker()
	assert.True(t, c.Known("neural"))
	assert.True(t, c.Known("NEURAL"))
	assert.False(t, c.Known("nets"))
	assert.Equal(t, 11, c.Size())
}

func TestCorrect(t *testing.T) {
	c := testChecker()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already correct", "graph networks", "graph networks"},
		{"insertion", "machne lerning", "machine learning"},
		{"transposition keeps title case", "Nueral", "Neural"},
		{"upper case preserved", "NEURL NETWRKS", "NEURAL NETWORKS"},
		{"two edits", "robtcs", "robotics"},
		{"short acronym untouched", "AI", "AI"},
		{"unknown word kept", "zzzzzzzz", "zzzzzzzz"},
		{"non-alphabetic token kept", "gpt4 graph", "gpt4 graph"},
		{"punctuation kept in place", "graph,networks", "graph,networks"},
		{"symbols untouched", "C++ networks", "C++ networks"},
		{"correction inside punctuation", "C++ nueral-networks", "C++ neural-networks"},
		{"whitespace kept", "  graph   vision ", "  graph   vision "},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Correct(tc.in))
		})
	}
}

func TestWordPrefersFrequentCandidate(t *testing.T) {
	c := New([]string{"form form from"})
	assert.Equal(t, "form", c.Word("fom"))
}

func TestWordTieBreaksLexically(t *testing.T) {
	c := New([]string{"cat car"})
	for range 10 {
		assert.Equal(t, "car", c.Word("caz"))
	}
}

func TestEdits1(t *testing.T) {
	e := edits1("ab")
	for _, w := range []string{"a", "b", "ba", "xb", "abx", "xab", "axb"} {
		assert.Contains(t, e, w)
	}
	assert.NotContains(t, e, "abcd")
}

type fakeVocab struct {
	texts []string
	err   error
}

func (f fakeVocab) Vocabulary(context.Context) ([]string, error) { return f.texts, f.err }

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), fakeVocab{texts: []string{"bayesian inference"}})
	require.NoError(t, err)
	assert.Equal(t, "bayesian inference", c.Correct("bayesain inferense"))

	_, err = Load(context.Background(), fakeVocab{err: errors.New("no such table")})
	assert.ErrorContains(t, err, "no such table")
}
