package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"springboard/client"
)

const (
	NeedDescriptionText  = "Please enter a description to check for duplicates."
	CheckingText         = "Checking for similar APIs…"
	SimilarFoundText     = "⚠️ Similar APIs found:"
	SimilarReviewText    = "Review the list, then submit if you want to add it anyway."
	NoSimilarText        = "✅ No similar APIs found. You can submit now."
	CheckFailedText      = "Couldn’t check for duplicates. Try again."
	NeedBothFieldsText   = "Please fill in both API name and description."
	SubmittingText       = "Submitting new API..."
	SubmitRedirectSuffix = " 🎉 Redirecting..."
	SubmitFailedText     = "Failed to submit API. Please try again."
)

// SubmitPhase is where the duplicate-check & submit flow currently is.
type SubmitPhase int

const (
	SubmitIdle SubmitPhase = iota
	SubmitChecking
	SubmitDuplicatesFound
	SubmitNoDuplicates
	SubmitSubmitting
	SubmitOK
	SubmitError
)

// StatusKind styles the status line.
type StatusKind int

const (
	StatusPlain StatusKind = iota
	StatusOK
	StatusWarn
	StatusErr
)

// Status is the Submission Panel's status area. Similar is only set for the
// duplicates-found warning and is rendered as a list between Text and Note.
type Status struct {
	Kind    StatusKind
	Text    string
	Similar []client.Candidate
	Note    string
}

// SubmitState is the Submission Panel. Both controls start enabled.
type SubmitState struct {
	Phase  SubmitPhase
	Status Status

	checkDisabled  bool
	submitDisabled bool
}

func (s *SubmitState) CheckEnabled() bool  { return !s.checkDisabled }
func (s *SubmitState) SubmitEnabled() bool { return !s.submitDisabled }

func (s *SubmitState) setStatus(kind StatusKind, text string) {
	s.Status = Status{Kind: kind, Text: text}
}

// CheckDuplicates moves to Checking. The name is optional here.
func (m *Model) CheckDuplicates(name, description string) tea.Cmd {
	s := &m.Submission
	if !s.CheckEnabled() {
		return nil
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if description == "" {
		s.setStatus(StatusErr, NeedDescriptionText)
		return nil
	}

	s.Phase = SubmitChecking
	s.setStatus(StatusPlain, CheckingText)
	s.checkDisabled = true
	s.submitDisabled = true

	backend := m.Backend
	api := client.NewAPI{APIName: name, Description: description}
	return func() tea.Msg {
		report, err := backend.CheckDuplicates(context.Background(), api)
		return DuplicateReportMsg{Report: report, Err: err}
	}
}

// HandleDuplicateReport renders the outcome of a check. Submission is
// enabled afterwards in every case, so a failed check never blocks it.
func (m *Model) HandleDuplicateReport(msg DuplicateReportMsg) {
	s := &m.Submission
	s.checkDisabled = false
	s.submitDisabled = false

	switch {
	case msg.Err != nil:
		m.Logger.Warn().Err(msg.Err).Msg("duplicate check failed")
		s.Phase = SubmitIdle
		s.setStatus(StatusErr, CheckFailedText)
	case len(msg.Report.SimilarAPIs) > 0:
		s.Phase = SubmitDuplicatesFound
		s.Status = Status{
			Kind:    StatusWarn,
			Text:    SimilarFoundText,
			Similar: msg.Report.SimilarAPIs,
			Note:    SimilarReviewText,
		}
	default:
		s.Phase = SubmitNoDuplicates
		s.setStatus(StatusOK, NoSimilarText)
	}
}

// SubmitAPI moves to Submitting. Both fields are required.
func (m *Model) SubmitAPI(name, description string) tea.Cmd {
	s := &m.Submission
	if !s.SubmitEnabled() {
		return nil
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		s.setStatus(StatusErr, NeedBothFieldsText)
		return nil
	}

	s.Phase = SubmitSubmitting
	s.setStatus(StatusPlain, SubmittingText)
	s.checkDisabled = true
	s.submitDisabled = true

	backend := m.Backend
	api := client.NewAPI{APIName: name, Description: description}
	return func() tea.Msg {
		resp, err := backend.Submit(context.Background(), api)
		return SubmitResultMsg{Response: resp, Err: err}
	}
}

// HandleSubmitResult re-enables both controls and, on success, schedules
// the redirect back to the chat panel.
func (m *Model) HandleSubmitResult(msg SubmitResultMsg) tea.Cmd {
	s := &m.Submission
	s.checkDisabled = false
	s.submitDisabled = false

	if msg.Err != nil {
		m.Logger.Warn().Err(msg.Err).Msg("submit failed")
		s.Phase = SubmitError
		s.setStatus(StatusErr, SubmitFailedText)
		return nil
	}

	// Controls stay off until the redirect resets the panel.
	s.checkDisabled = true
	s.submitDisabled = true
	s.Phase = SubmitOK
	s.setStatus(StatusOK, msg.Response.Message+SubmitRedirectSuffix)
	return tea.Tick(m.redirectDelay, func(time.Time) tea.Msg {
		return RedirectMsg{}
	})
}

// HandleRedirect leaves the Submission Panel for the chat panel and reloads
// the catalog so the new API shows up.
func (m *Model) HandleRedirect() tea.Cmd {
	m.Submission = SubmitState{}
	m.Panel = PanelChat
	return m.RefreshCatalog()
}
