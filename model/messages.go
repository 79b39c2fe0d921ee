package model

import "springboard/client"

type SearchResultMsg struct {
	SessionID string
	Response  client.SearchResponse
	Err       error
}

type DetailLoadedMsg struct {
	Card   CardRef
	Seq    int
	Detail client.APIDetail
	Err    error
}

type CardLikedMsg struct {
	Card     CardRef
	Response client.LikeResponse
	Err      error
}

type CatalogLoadedMsg struct {
	APIs []client.APISummary
	Err  error
}

type CatalogLikedMsg struct {
	ID    client.ID
	Likes int
	Err   error
}

type DuplicateReportMsg struct {
	Report client.DuplicateReport
	Err    error
}

type SubmitResultMsg struct {
	Response client.SubmitResponse
	Err      error
}

// RedirectMsg fires once the post-submit delay has elapsed.
type RedirectMsg struct{}
