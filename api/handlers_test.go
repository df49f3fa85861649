package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/poll-search/internal/errors"
	"github.com/gcbaptista/poll-search/model"
	"github.com/gcbaptista/poll-search/services"
)

// stubService is a canned services.PollService for handler tests.
type stubService struct {
	polls map[int64]model.PollWithOptions
}

func newStubService() *stubService {
	return &stubService{polls: map[int64]model.PollWithOptions{
		1: {Poll: model.Poll{ID: 1, Title: "Best Pizza Topping", IsActive: true}},
		2: {Poll: model.Poll{ID: 2, Title: "Best Programming Language", IsActive: true}},
	}}
}

func (s *stubService) Create(_ context.Context, poll model.Poll, _ []string) (model.Poll, error) {
	for _, existing := range s.polls {
		if existing.Title == poll.Title {
			return model.Poll{}, internalErrors.NewDuplicateTitleError(poll.Title)
		}
	}
	poll.ID = int64(len(s.polls) + 1)
	s.polls[poll.ID] = model.PollWithOptions{Poll: poll}
	return poll, nil
}

func (s *stubService) Get(_ context.Context, id int64) (model.PollWithOptions, error) {
	poll, ok := s.polls[id]
	if !ok {
		return model.PollWithOptions{}, internalErrors.NewPollNotFoundError(id)
	}
	return poll, nil
}

func (s *stubService) Update(_ context.Context, id int64, patch services.PollPatch) (model.Poll, error) {
	poll, ok := s.polls[id]
	if !ok {
		return model.Poll{}, internalErrors.NewPollNotFoundError(id)
	}
	if patch.Title != nil {
		poll.Title = *patch.Title
	}
	s.polls[id] = poll
	return poll.Poll, nil
}

func (s *stubService) Delete(_ context.Context, id int64) error {
	if _, ok := s.polls[id]; !ok {
		return internalErrors.NewPollNotFoundError(id)
	}
	delete(s.polls, id)
	return nil
}

func (s *stubService) List(_ context.Context, _ services.ListQuery) ([]model.Poll, int, error) {
	out := []model.Poll{}
	for id := int64(1); id <= int64(len(s.polls))+1; id++ {
		if poll, ok := s.polls[id]; ok {
			out = append(out, poll.Poll)
		}
	}
	return out, len(out), nil
}

func (s *stubService) Vote(_ context.Context, pollID, optionID int64) error {
	if _, ok := s.polls[pollID]; !ok {
		return internalErrors.NewPollNotFoundError(pollID)
	}
	return nil
}

func (s *stubService) Top(_ context.Context, _ int) ([]model.PollWithOptions, error) {
	return []model.PollWithOptions{}, nil
}

func (s *stubService) Trending(_ context.Context, _ int) ([]model.PollWithOptions, error) {
	return []model.PollWithOptions{}, nil
}

func (s *stubService) Autocomplete(prefix string) []model.PollSummary {
	if strings.TrimSpace(prefix) == "" {
		return []model.PollSummary{}
	}
	out := []model.PollSummary{}
	for id := int64(1); id <= int64(len(s.polls))+1; id++ {
		poll, ok := s.polls[id]
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(poll.Title), strings.ToLower(prefix)) {
			out = append(out, poll.Summary())
		}
	}
	return out
}

func (s *stubService) FuzzySearchTitles(_ context.Context, query string, _ int) ([]services.FuzzyHit, error) {
	out := []services.FuzzyHit{}
	for id := int64(1); id <= int64(len(s.polls))+1; id++ {
		poll, ok := s.polls[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(poll.Title), strings.ToLower(query)) {
			out = append(out, services.FuzzyHit{Poll: poll.Summary(), Score: 0})
		}
	}
	return out, nil
}

func (s *stubService) IndexSize() int { return len(s.polls) }

func newTestRouter(service services.PollService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, service)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(newStubService())
	w := doRequest(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(2), body["indexed_polls"])
}

func TestAutocompleteHandler(t *testing.T) {
	router := newTestRouter(newStubService())

	t.Run("matching prefix", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/autocomplete?prefix=best+p", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp AutocompleteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.NotEmpty(t, resp.QueryId)
	})

	t.Run("blank prefix returns empty hits", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/autocomplete?prefix=", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp AutocompleteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Hits)
	})
}

func TestFuzzySearchHandler(t *testing.T) {
	router := newTestRouter(newStubService())

	t.Run("missing query", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/fuzzy-search", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid max_distance", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/fuzzy-search?q=pizza&max_distance=-2", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("matching query", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/fuzzy-search?q=pizza", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp FuzzySearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, "Best Pizza Topping", resp.Hits[0].Poll.Title)
	})
}

func TestCreatePollHandler(t *testing.T) {
	router := newTestRouter(newStubService())

	t.Run("created", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/polls",
			`{"title": "New Poll", "options": ["A", "B"]}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/polls", `{"description": "no title"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate title", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/polls", `{"title": "Best Pizza Topping"}`)
		assert.Equal(t, http.StatusConflict, w.Code)

		var apiErr APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, ErrorCodeDuplicateTitle, apiErr.Code)
	})
}

func TestGetPollHandler(t *testing.T) {
	router := newTestRouter(newStubService())

	t.Run("found", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/999", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		var apiErr APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, ErrorCodePollNotFound, apiErr.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/polls/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdatePollHandler(t *testing.T) {
	router := newTestRouter(newStubService())

	t.Run("renamed", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPatch, "/polls/1", `{"title": "Renamed"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPatch, "/polls/1", `{"title": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeletePollHandler(t *testing.T) {
	router := newTestRouter(newStubService())
	w := doRequest(t, router, http.MethodDelete, "/polls/2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/polls/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPollsHandler(t *testing.T) {
	router := newTestRouter(newStubService())
	w := doRequest(t, router, http.MethodGet, "/polls?page=1&limit=10", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Meta.Total)
	assert.False(t, resp.Meta.HasNext)
}
