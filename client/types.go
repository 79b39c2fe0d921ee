package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Candidate is one search or duplicate-check hit.
type Candidate struct {
	APIName     string `json:"apiName"`
	Description string `json:"description"`
}

// SearchResponse is the decoded /api/search reply. IsList is false when the
// backend answered with a non-array reply, which means "no results".
type SearchResponse struct {
	Candidates []Candidate
	IsList     bool
}

// HasResults reports whether there is anything to render as cards.
func (r SearchResponse) HasResults() bool {
	return r.IsList && len(r.Candidates) > 0
}

type APIDetail struct {
	APIName     string `json:"apiName"`
	Description string `json:"description"`
}

// LikeResponse carries the new like count; nil when the endpoint did not say.
type LikeResponse struct {
	Likes *int `json:"likes"`
}

type APISummary struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Likes       int    `json:"likes"`
	Liked       bool   `json:"liked,omitempty"`
}

// NewAPI is the body of both the duplicate check and the submission.
type NewAPI struct {
	APIName     string `json:"apiName"`
	Description string `json:"description"`
}

type DuplicateReport struct {
	Message     string      `json:"message"`
	SimilarAPIs []Candidate `json:"similarApis"`
}

type SubmitResponse struct {
	Message string `json:"message"`
}

// ID accepts both string and numeric ids from the backend.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
