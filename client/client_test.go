package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"springboard/client"
	"springboard/client/clienttest"
)

func newClient(t *testing.T, backend *clienttest.Backend, opts ...client.Option) *client.Client {
	t.Helper()
	srv := backend.Start(t)
	c, err := client.NewClient(srv.URL, append([]client.Option{client.WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func weatherBackend() *clienttest.Backend {
	return clienttest.New().
		AddAPI(client.APISummary{ID: "1", Name: "WeatherNow", Description: "Current weather", Likes: 3}).
		AddAPI(client.APISummary{ID: "2", Name: "MailerX", Description: "sends emails"})
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := client.NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := client.NewClient("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())

	c, err = client.NewClient("http://backend:9000/")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", c.BaseURL())
}

func TestSearch(t *testing.T) {
	backend := weatherBackend().
		SetSearchReply("weather api", []client.Candidate{{APIName: "WeatherNow", Description: "Current weather"}}).
		SetSearchReply("nothing", []client.Candidate{}).
		SetSearchReply("chatty", "I could not find anything").
		SetSearchReply("null", nil).
		SetSearchReply("null entries", []any{nil}).
		SetSearchReply("mixed", []any{nil, map[string]string{"description": "nameless"}, map[string]string{"apiName": "MailerX", "description": "sends emails"}})
	c := newClient(t, backend)
	ctx := context.Background()

	tests := []struct {
		prompt      string
		wantList    bool
		wantResults bool
		wantCount   int
	}{
		{"weather api", true, true, 1},
		{"nothing", true, false, 0},
		{"chatty", false, false, 0},
		{"null", false, false, 0},
		{"null entries", true, false, 0},
		{"mixed", true, true, 1},
		{"sends", true, true, 1}, // default substring search of the fake
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			resp, err := c.Search(ctx, tt.prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantList, resp.IsList)
			assert.Equal(t, tt.wantResults, resp.HasResults())
			assert.Len(t, resp.Candidates, tt.wantCount)
			for _, candidate := range resp.Candidates {
				assert.NotEmpty(t, candidate.APIName)
			}
		})
	}
}

func TestSearchEscapesPrompt(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrompt = r.URL.Query().Get("prompt")
		w.Write([]byte(`{"reply": []}`))
	}))
	defer srv.Close()

	c, err := client.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "a&b=c d?")
	require.NoError(t, err)
	assert.Equal(t, "a&b=c d?", gotPrompt)
}

func TestErrorClasses(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		backend := weatherBackend().Fail(clienttest.RouteSearch, http.StatusInternalServerError)
		c := newClient(t, backend)

		_, err := c.Search(context.Background(), "weather")
		var statusErr *client.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	})

	t.Run("decode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"reply": [`))
		}))
		defer srv.Close()
		c, err := client.NewClient(srv.URL)
		require.NoError(t, err)

		_, err = c.Search(context.Background(), "x")
		assert.True(t, errors.Is(err, client.ErrDecode))
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := client.NewClient(url)
		require.NoError(t, err)
		_, err = c.ListAPIs(context.Background())
		require.Error(t, err)
		var statusErr *client.StatusError
		assert.False(t, errors.As(err, &statusErr))
	})
}

func TestDetail(t *testing.T) {
	c := newClient(t, weatherBackend())

	detail, err := c.Detail(context.Background(), "WeatherNow")
	require.NoError(t, err)
	assert.Equal(t, "WeatherNow", detail.APIName)
	assert.Equal(t, "Current weather", detail.Description)

	_, err = c.Detail(context.Background(), "Unknown")
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestLikeCardCanonicalPath(t *testing.T) {
	backend := weatherBackend()
	c := newClient(t, backend)

	resp, err := c.LikeCard(context.Background(), "WeatherNow")
	require.NoError(t, err)
	require.NotNil(t, resp.Likes)
	assert.Equal(t, 4, *resp.Likes)
	assert.Contains(t, backend.Requests(), "POST "+clienttest.RouteListLike)
}

func TestLikeCardDetailPath(t *testing.T) {
	backend := weatherBackend()
	c := newClient(t, backend, client.WithDetailLikePath(true))

	resp, err := c.LikeCard(context.Background(), "WeatherNow")
	require.NoError(t, err)
	assert.Nil(t, resp.Likes)
	assert.Equal(t, 4, backend.Likes("WeatherNow"))
	assert.Contains(t, backend.Requests(), "POST "+clienttest.RouteDetailLike)
}

func TestLikeAPIRequiresCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c, err := client.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.LikeAPI(context.Background(), "1")
	assert.True(t, errors.Is(err, client.ErrDecode))
}

func TestListAPIs(t *testing.T) {
	c := newClient(t, weatherBackend())

	apis, err := c.ListAPIs(context.Background())
	require.NoError(t, err)
	require.Len(t, apis, 2)
	assert.Equal(t, client.ID("1"), apis[0].ID)
	assert.Equal(t, 3, apis[0].Likes)
}

func TestAPISummaryNumericID(t *testing.T) {
	var apis []client.APISummary
	err := json.Unmarshal([]byte(`[{"id": 42, "name": "A"}, {"id": "b-7", "name": "B"}, {"id": null, "name": "C"}]`), &apis)
	require.NoError(t, err)
	assert.Equal(t, client.ID("42"), apis[0].ID)
	assert.Equal(t, client.ID("b-7"), apis[1].ID)
	assert.Equal(t, client.ID(""), apis[2].ID)
}

func TestCheckDuplicates(t *testing.T) {
	backend := weatherBackend()
	c := newClient(t, backend)

	report, err := c.CheckDuplicates(context.Background(), client.NewAPI{Description: "sends email"})
	require.NoError(t, err)
	require.Len(t, report.SimilarAPIs, 1)
	assert.Equal(t, "MailerX", report.SimilarAPIs[0].APIName)

	report, err = c.CheckDuplicates(context.Background(), client.NewAPI{APIName: "Geo", Description: "geocoding"})
	require.NoError(t, err)
	assert.Empty(t, report.SimilarAPIs)
}

func TestSubmit(t *testing.T) {
	backend := weatherBackend()
	c := newClient(t, backend)

	resp, err := c.Submit(context.Background(), client.NewAPI{APIName: "Geo", Description: "geocoding"})
	require.NoError(t, err)
	assert.Equal(t, clienttest.SavedMessage, resp.Message)
	assert.Equal(t, []client.NewAPI{{APIName: "Geo", Description: "geocoding"}}, backend.Added())

	_, err = c.Submit(context.Background(), client.NewAPI{APIName: "Geo"})
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := client.NewClient(srv.URL, client.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.ListAPIs(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
