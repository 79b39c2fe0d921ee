package ui

import (
	appmodel "springboard/model"
)

// Message type aliases - defined in the model package
type searchResultMsg = appmodel.SearchResultMsg
type detailLoadedMsg = appmodel.DetailLoadedMsg
type cardLikedMsg = appmodel.CardLikedMsg
type catalogLoadedMsg = appmodel.CatalogLoadedMsg
type catalogLikedMsg = appmodel.CatalogLikedMsg
type duplicateReportMsg = appmodel.DuplicateReportMsg
type submitResultMsg = appmodel.SubmitResultMsg
type redirectMsg = appmodel.RedirectMsg

// flashClearMsg ends a transient status bar message.
type flashClearMsg struct {
	seq int
}

// Focus is the chat panel zone receiving list keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusResults
	FocusHistory
	FocusCatalog
)

var chatFocusOrder = []Focus{FocusInput, FocusResults, FocusHistory, FocusCatalog}

func (f Focus) String() string {
	switch f {
	case FocusResults:
		return "Results"
	case FocusHistory:
		return "History"
	case FocusCatalog:
		return "APIs"
	default:
		return "Prompt"
	}
}

// submitField is the focused input of the Submission Panel.
type submitField int

const (
	fieldName submitField = iota
	fieldDescription
)
