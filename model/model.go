package model

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"springboard/client"
	"springboard/config"
	"springboard/storage"
)

// Backend is the part of the Springboard API the front-end uses.
// *client.Client satisfies it.
type Backend interface {
	Search(ctx context.Context, prompt string) (client.SearchResponse, error)
	Detail(ctx context.Context, apiName string) (client.APIDetail, error)
	LikeCard(ctx context.Context, apiName string) (client.LikeResponse, error)
	LikeAPI(ctx context.Context, id string) (client.LikeResponse, error)
	ListAPIs(ctx context.Context) ([]client.APISummary, error)
	CheckDuplicates(ctx context.Context, api client.NewAPI) (client.DuplicateReport, error)
	Submit(ctx context.Context, api client.NewAPI) (client.SubmitResponse, error)
}

// Panel is the screen the user is looking at.
type Panel int

const (
	PanelChat Panel = iota
	PanelSubmit
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config  *config.Config
	Backend Backend
	Store   *storage.ChatStore
	Logger  zerolog.Logger

	// Application state
	Panel      Panel
	Chat       ChatState
	Catalog    CatalogState
	Submission SubmitState

	// Alert is a one-shot message the user has to acknowledge.
	Alert string

	Quitting bool

	// Application metadata
	Version string

	redirectDelay time.Duration
}

// NewModel creates a Model and restores the last active session, or starts a
// fresh one when the store is empty.
func NewModel(cfg *config.Config, backend Backend, store *storage.ChatStore, version string) *Model {
	m := &Model{
		Config:        cfg,
		Backend:       backend,
		Store:         store,
		Logger:        config.DebugLog,
		Version:       version,
		redirectDelay: config.DefaultRedirectDelay,
		Catalog:       CatalogState{Expanded: -1},
	}
	if cfg != nil && cfg.RedirectDelay > 0 {
		m.redirectDelay = cfg.RedirectDelay
	}

	m.restoreSession()
	return m
}

func (m *Model) restoreSession() {
	id := m.Store.CurrentSessionID()
	if id == "" {
		if sessions := m.Store.ListSessionsByRecency(); len(sessions) > 0 {
			id = sessions[0].ID
		}
	}
	if id == "" {
		m.NewChat()
		return
	}
	m.LoadSession(id)
}

// DismissAlert clears the pending alert after the user acknowledged it.
func (m *Model) DismissAlert() {
	m.Alert = ""
}

// ShowPanel switches panels. In-flight requests keep running.
func (m *Model) ShowPanel(p Panel) {
	m.Panel = p
}

// RedirectDelay is how long a successful submission waits before leaving
// the Submission Panel.
func (m *Model) RedirectDelay() time.Duration {
	return m.redirectDelay
}

func (m *Model) alert(text string, err error) {
	m.Alert = text
	m.Logger.Warn().Err(err).Msg(text)
}
