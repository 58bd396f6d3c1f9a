// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex is a small client for the OpenAlex authors and works
// endpoints, used to populate the advisor store.
package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/advisor-match/internal/httputil"
	"github.com/pdiddy/advisor-match/pkg/types"
)

// Endpoints. Declared as vars so tests can substitute an httptest server.
var (
	authorsBase = "https://api.openalex.org/authors"
	worksBase   = "https://api.openalex.org/works"
)

const authorCandidates = 10

// ErrAuthorNotFound is returned when an author search has no results.
var ErrAuthorNotFound = errors.New("author not found")

// Client queries OpenAlex through a rate-limited, retrying HTTP client.
type Client struct {
	HTTP *httputil.Client

	// Email is sent as the mailto parameter for polite pool access.
	Email     string
	UserAgent string
}

// Author is an OpenAlex author search result.
type Author struct {
	ID           string        `json:"id"`
	DisplayName  string        `json:"display_name"`
	WorksCount   int           `json:"works_count"`
	Affiliations []Affiliation `json:"affiliations"`
}

// Affiliation links an author to an institution.
type Affiliation struct {
	Institution Institution `json:"institution"`
}

// Institution is an OpenAlex institution.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Work is an OpenAlex work.
type Work struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	Authorships           []WorkAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	PrimaryLocation       *PrimaryLocation `json:"primary_location"`
}

// WorkAuthorship is one author entry on a work.
type WorkAuthorship struct {
	AuthorPosition string     `json:"author_position"`
	Author         WorkAuthor `json:"author"`
}

// WorkAuthor identifies the author of a WorkAuthorship.
type WorkAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PrimaryLocation is where a work is published.
type PrimaryLocation struct {
	LandingPageURL string  `json:"landing_page_url"`
	Source         *Source `json:"source"`
}

// Source is a journal or conference.
type Source struct {
	DisplayName string `json:"display_name"`
}

type listResponse[T any] struct {
	Results []T `json:"results"`
}

// FindAuthor searches for name and returns the first candidate with an
// institution matching one of hints (case-insensitive substring). When
// none matches, the top result is returned and matched is false.
func (c *Client) FindAuthor(ctx context.Context, name string, hints []string) (author Author, matched bool, err error) {
	params := url.Values{
		"search":   {name},
		"per_page": {strconv.Itoa(authorCandidates)},
	}
	var resp listResponse[Author]
	if err := c.get(ctx, authorsBase, params, &resp); err != nil {
		return Author{}, false, fmt.Errorf("searching author %q: %w", name, err)
	}
	if len(resp.Results) == 0 {
		return Author{}, false, fmt.Errorf("%q: %w", name, ErrAuthorNotFound)
	}

	for _, a := range resp.Results {
		if a.affiliatedWith(hints) {
			return a, true, nil
		}
	}
	return resp.Results[0], false, nil
}

func (a Author) affiliatedWith(hints []string) bool {
	for _, aff := range a.Affiliations {
		inst := strings.ToLower(aff.Institution.DisplayName)
		for _, h := range hints {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" && strings.Contains(inst, h) {
				return true
			}
		}
	}
	return false
}

// Works returns up to limit works by authorID, newest first.
func (c *Client) Works(ctx context.Context, authorID string, limit int) ([]Work, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 200 {
		limit = 200
	}
	params := url.Values{
		"filter":   {"author.id:" + ShortID(authorID)},
		"sort":     {"publication_year:desc"},
		"per_page": {strconv.Itoa(limit)},
	}
	var resp listResponse[Work]
	if err := c.get(ctx, worksBase, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching works for %s: %w", authorID, err)
	}
	return resp.Results, nil
}

func (c *Client) get(ctx context.Context, base string, params url.Values, out any) error {
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// ShortID strips the https://openalex.org/ prefix from an entity id.
func ShortID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Publication converts w to a store record. The URL is the DOI when
// present, otherwise the landing page.
func (w Work) Publication() types.Publication {
	p := types.Publication{
		PaperID:       w.ID,
		Title:         w.Title,
		Abstract:      ReconstructAbstract(w.AbstractInvertedIndex),
		Year:          w.PublicationYear,
		CitationCount: w.CitedByCount,
		URL:           w.DOI,
	}
	if loc := w.PrimaryLocation; loc != nil {
		if loc.Source != nil {
			p.Venue = loc.Source.DisplayName
		}
		if p.URL == "" {
			p.URL = loc.LandingPageURL
		}
	}
	return p
}

// AuthorPosition returns the 1-based position of authorID on w and
// whether that author is primary (first position). The position is -1
// when the author is not listed.
func (w Work) AuthorPosition(authorID string) (position int, primary bool) {
	short := ShortID(authorID)
	for i, a := range w.Authorships {
		if short != "" && ShortID(a.Author.ID) == short {
			return i + 1, i == 0 || a.AuthorPosition == "first"
		}
	}
	return -1, false
}

// ReconstructAbstract converts an abstract_inverted_index, which maps
// each word to its positions, back to plain text.
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].pos != pairs[j].pos {
			return pairs[i].pos < pairs[j].pos
		}
		return pairs[i].word < pairs[j].word
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
