// Package clienttest serves an in-memory Springboard backend for tests.
package clienttest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"springboard/client"
)

// Route patterns, usable with Fail.
const (
	RouteSearch     = "/api/search"
	RouteDetail     = "/api/details/:name"
	RouteDetailLike = "/api/:name/like"
	RouteListLike   = "/apis/:id/like"
	RouteList       = "/apis"
	RouteDuplicates = "/api/check-duplicates"
	RouteAdd        = "/api/add"
)

const SavedMessage = "API saved Successfully!"

// Backend is a fake Springboard backend. Zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	catalog  []client.APISummary
	details  map[string]client.APIDetail
	replies  map[string]any
	similar  []client.Candidate
	failures map[string]int
	requests []string
	added    []client.NewAPI
}

func New() *Backend {
	return &Backend{
		details:  make(map[string]client.APIDetail),
		replies:  make(map[string]any),
		failures: make(map[string]int),
	}
}

// AddAPI puts an API into the catalog and makes its detail available.
func (b *Backend) AddAPI(api client.APISummary) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog = append(b.catalog, api)
	b.details[api.Name] = client.APIDetail{APIName: api.Name, Description: api.Description}
	return b
}

// SetSearchReply fixes the raw "reply" value for a prompt.
func (b *Backend) SetSearchReply(prompt string, reply any) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[prompt] = reply
	return b
}

// SetSimilar fixes the similarApis answered by the duplicate check.
func (b *Backend) SetSimilar(similar []client.Candidate) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.similar = similar
	return b
}

// Fail makes a route answer with status until cleared with status 0.
func (b *Backend) Fail(route string, status int) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
	} else {
		b.failures[route] = status
	}
	return b
}

// Requests lists "METHOD route" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Added lists the APIs accepted by /api/add.
func (b *Backend) Added() []client.NewAPI {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.NewAPI(nil), b.added...)
}

// Likes returns the current like count for an API name or id.
func (b *Backend) Likes(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(key); i >= 0 {
		return b.catalog[i].Likes
	}
	return 0
}

// Start serves the backend until the test ends.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func (b *Backend) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(b.record)

	e.GET(RouteSearch, b.search)
	e.GET(RouteDetail, b.detail)
	e.POST(RouteDetailLike, b.likeDetail)
	e.GET(RouteList, b.list)
	e.POST(RouteListLike, b.likeList)
	e.POST(RouteDuplicates, b.checkDuplicates)
	e.POST(RouteAdd, b.add)

	return e
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		b.requests = append(b.requests, c.Request().Method+" "+c.Path())
		status, failing := b.failures[c.Path()]
		b.mu.Unlock()

		if failing {
			return c.JSON(status, map[string]string{"error": "injected failure"})
		}
		return next(c)
	}
}

func (b *Backend) search(c echo.Context) error {
	prompt := c.QueryParam("prompt")

	b.mu.Lock()
	defer b.mu.Unlock()

	if reply, ok := b.replies[prompt]; ok {
		return c.JSON(http.StatusOK, map[string]any{"reply": reply})
	}

	needle := strings.ToLower(prompt)
	matches := []client.Candidate{}
	for _, api := range b.catalog {
		if strings.Contains(strings.ToLower(api.Name+" "+api.Description), needle) {
			matches = append(matches, client.Candidate{APIName: api.Name, Description: api.Description})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"reply": matches})
}

func (b *Backend) detail(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	detail, ok := b.details[c.Param("name")]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, detail)
}

func (b *Backend) likeDetail(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(c.Param("name"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	b.catalog[i].Likes++
	return c.JSON(http.StatusOK, map[string]string{"status": "liked"})
}

func (b *Backend) likeList(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(c.Param("id"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	b.catalog[i].Likes++
	b.catalog[i].Liked = true
	return c.JSON(http.StatusOK, map[string]int{"likes": b.catalog[i].Likes})
}

func (b *Backend) list(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	apis := append([]client.APISummary{}, b.catalog...)
	return c.JSON(http.StatusOK, apis)
}

func (b *Backend) checkDuplicates(c echo.Context) error {
	var req client.NewAPI
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	similar := b.similar
	if similar == nil {
		similar = []client.Candidate{}
		desc := strings.ToLower(req.Description)
		for _, api := range b.catalog {
			other := strings.ToLower(api.Description)
			if desc != "" && (strings.Contains(other, desc) || strings.Contains(desc, other)) {
				similar = append(similar, client.Candidate{APIName: api.Name, Description: api.Description})
			}
		}
	}

	message := "No similar APIs found"
	if len(similar) > 0 {
		message = "Similar APIs found"
	}
	return c.JSON(http.StatusOK, client.DuplicateReport{Message: message, SimilarAPIs: similar})
}

func (b *Backend) add(c echo.Context) error {
	var req client.NewAPI
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.APIName == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "apiName and description are required"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.added = append(b.added, req)
	b.catalog = append(b.catalog, client.APISummary{
		ID:          client.ID(req.APIName),
		Name:        req.APIName,
		Description: req.Description,
	})
	b.details[req.APIName] = client.APIDetail{APIName: req.APIName, Description: req.Description}
	return c.JSON(http.StatusOK, client.SubmitResponse{Message: SavedMessage})
}

func (b *Backend) indexLocked(key string) int {
	for i, api := range b.catalog {
		if api.ID.String() == key || api.Name == key {
			return i
		}
	}
	return -1
}
