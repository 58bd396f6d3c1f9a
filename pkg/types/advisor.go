// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Advisor is a faculty member who can supervise research.
type Advisor struct {
	ID               int64  `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	College          string `json:"college,omitempty" yaml:"college,omitempty"`
	Department       string `json:"department,omitempty" yaml:"department,omitempty"`
	Interests        string `json:"interests,omitempty" yaml:"interests,omitempty"`
	URL              string `json:"url,omitempty" yaml:"url,omitempty"`
	OpenAlexAuthorID string `json:"openalex_author_id,omitempty" yaml:"openalex_author_id,omitempty"`
}

// AdvisorDetail is an Advisor with aggregate publication counts.
type AdvisorDetail struct {
	Advisor `yaml:",inline"`

	TotalPublications  int `json:"total_publications" yaml:"total_publications"`
	RecentPublications int `json:"recent_publications" yaml:"recent_publications"`
}

// Publication is a paper record. PaperID is the stable external
// identifier (an OpenAlex work URL for ingested records).
type Publication struct {
	PaperID       string `json:"paper_id" yaml:"paper_id"`
	Title         string `json:"title" yaml:"title"`
	Abstract      string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Venue         string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year          int    `json:"year,omitempty" yaml:"year,omitempty"`
	CitationCount int    `json:"citation_count" yaml:"citation_count"`
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
}

// PublicationAuthor is an advisor listed on a publication.
type PublicationAuthor struct {
	AdvisorID int64  `json:"advisor_id" yaml:"advisor_id"`
	Name      string `json:"name" yaml:"name"`
	Position  int    `json:"position" yaml:"position"`
	IsPrimary bool   `json:"is_primary" yaml:"is_primary"`
}

// PublicationDetail is a Publication with its advisor-authors in
// author-position order.
type PublicationDetail struct {
	Publication `yaml:",inline"`

	Authors []PublicationAuthor `json:"authors" yaml:"authors"`
}

// Authorship links an advisor to a publication.
type Authorship struct {
	AdvisorID int64  `json:"advisor_id" yaml:"advisor_id"`
	PaperID   string `json:"paper_id" yaml:"paper_id"`

	// Position is the 1-based author position, or -1 when unknown.
	Position  int  `json:"position" yaml:"position"`
	IsPrimary bool `json:"is_primary" yaml:"is_primary"`
}

// Dataset is the portable form of the store used by import and export.
type Dataset struct {
	Advisors     []Advisor     `json:"advisors" yaml:"advisors"`
	Publications []Publication `json:"publications" yaml:"publications"`
	Authorships  []Authorship  `json:"authorships" yaml:"authorships"`
}
