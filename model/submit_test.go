package model

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"springboard/client"
	"springboard/client/clienttest"
)

func TestCheckDuplicatesRequiresDescription(t *testing.T) {
	m, _ := newTestModel(t, weatherBackend())

	assert.Nil(t, m.CheckDuplicates("Mailer", "   "))
	assert.Equal(t, Status{Kind: StatusErr, Text: NeedDescriptionText}, m.Submission.Status)
	assert.True(t, m.Submission.CheckEnabled())
	assert.True(t, m.Submission.SubmitEnabled())
}

func TestCheckDuplicatesFound(t *testing.T) {
	backend := weatherBackend().
		SetSimilar([]client.Candidate{{APIName: "MailerX", Description: "sends emails"}})
	m, _ := newTestModel(t, backend)

	cmd := m.CheckDuplicates("", "sends email")
	assert.Equal(t, SubmitChecking, m.Submission.Phase)
	assert.Equal(t, CheckingText, m.Submission.Status.Text)
	assert.False(t, m.Submission.CheckEnabled())
	assert.False(t, m.Submission.SubmitEnabled())

	m.HandleDuplicateReport(run(t, cmd).(DuplicateReportMsg))

	status := m.Submission.Status
	assert.Equal(t, SubmitDuplicatesFound, m.Submission.Phase)
	assert.Equal(t, StatusWarn, status.Kind)
	assert.Equal(t, SimilarFoundText, status.Text)
	require.Len(t, status.Similar, 1)
	assert.Equal(t, "MailerX", status.Similar[0].APIName)
	assert.Equal(t, SimilarReviewText, status.Note)
	assert.True(t, m.Submission.SubmitEnabled())
	assert.True(t, m.Submission.CheckEnabled())
}

func TestCheckDuplicatesOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		backend   *clienttest.Backend
		wantPhase SubmitPhase
		wantKind  StatusKind
		wantText  string
	}{
		{"none", weatherBackend(), SubmitNoDuplicates, StatusOK, NoSimilarText},
		{"failure", weatherBackend().Fail(clienttest.RouteDuplicates, http.StatusInternalServerError), SubmitIdle, StatusErr, CheckFailedText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, tt.backend)

			m.HandleDuplicateReport(run(t, m.CheckDuplicates("Geo", "geocoding")).(DuplicateReportMsg))

			assert.Equal(t, tt.wantPhase, m.Submission.Phase)
			assert.Equal(t, Status{Kind: tt.wantKind, Text: tt.wantText}, m.Submission.Status)
			// A failed check never blocks submission.
			assert.True(t, m.Submission.SubmitEnabled())
			assert.True(t, m.Submission.CheckEnabled())
		})
	}
}

func TestSubmitRequiresBothFields(t *testing.T) {
	m, _ := newTestModel(t, weatherBackend())

	assert.Nil(t, m.SubmitAPI("Geo", ""))
	assert.Equal(t, NeedBothFieldsText, m.Submission.Status.Text)
	assert.Nil(t, m.SubmitAPI("", "geocoding"))
	assert.Equal(t, StatusErr, m.Submission.Status.Kind)
}

func TestSubmitSuccessRedirects(t *testing.T) {
	backend := weatherBackend()
	m, _ := newTestModel(t, backend)
	m.ShowPanel(PanelSubmit)

	cmd := m.SubmitAPI(" Geo ", "geocoding")
	assert.Equal(t, SubmittingText, m.Submission.Status.Text)
	assert.False(t, m.Submission.CheckEnabled())
	assert.False(t, m.Submission.SubmitEnabled())

	tick := m.HandleSubmitResult(run(t, cmd).(SubmitResultMsg))
	assert.Equal(t, SubmitOK, m.Submission.Phase)
	assert.Equal(t, Status{Kind: StatusOK, Text: clienttest.SavedMessage + SubmitRedirectSuffix}, m.Submission.Status)
	assert.Equal(t, []client.NewAPI{{APIName: "Geo", Description: "geocoding"}}, backend.Added())
	assert.Equal(t, PanelSubmit, m.Panel)

	// Nothing can start while the redirect is pending.
	assert.False(t, m.Submission.CheckEnabled())
	assert.False(t, m.Submission.SubmitEnabled())
	assert.Nil(t, m.CheckDuplicates("Geo", "geocoding"))
	assert.Nil(t, m.SubmitAPI("Geo", "geocoding"))
	assert.Equal(t, SubmitOK, m.Submission.Phase)
	assert.NotContains(t, backend.Requests(), "POST "+clienttest.RouteDuplicates)
	assert.Len(t, backend.Added(), 1)

	_, ok := run(t, tick).(RedirectMsg)
	require.True(t, ok)

	refresh := m.HandleRedirect()
	assert.Equal(t, PanelChat, m.Panel)
	assert.Equal(t, SubmitIdle, m.Submission.Phase)
	assert.True(t, m.Submission.CheckEnabled())
	assert.True(t, m.Submission.SubmitEnabled())

	m.HandleCatalog(run(t, refresh).(CatalogLoadedMsg))
	require.Len(t, m.Catalog.Entries, 4)
	assert.Equal(t, "Geo", m.Catalog.Entries[3].API.Name)
}

func TestSubmitFailure(t *testing.T) {
	m, _ := newTestModel(t, weatherBackend().Fail(clienttest.RouteAdd, http.StatusInternalServerError))

	tick := m.HandleSubmitResult(run(t, m.SubmitAPI("Geo", "geocoding")).(SubmitResultMsg))

	assert.Nil(t, tick)
	assert.Equal(t, SubmitError, m.Submission.Phase)
	assert.Equal(t, Status{Kind: StatusErr, Text: SubmitFailedText}, m.Submission.Status)
	assert.True(t, m.Submission.CheckEnabled())
	assert.True(t, m.Submission.SubmitEnabled())
}
