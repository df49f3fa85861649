package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcbaptista/poll-search/model"
	"github.com/gcbaptista/poll-search/services"
)

// AutocompleteResponse is the envelope for GET /polls/autocomplete.
type AutocompleteResponse struct {
	Hits    []model.PollSummary `json:"hits"`
	Total   int                 `json:"total"`
	Took    int64               `json:"took"`     // milliseconds
	QueryId string              `json:"query_id"` // unique UUID for this query
}

// FuzzySearchResponse is the envelope for GET /polls/fuzzy-search.
type FuzzySearchResponse struct {
	Hits    []services.FuzzyHit `json:"hits"`
	Total   int                 `json:"total"`
	Took    int64               `json:"took"`     // milliseconds
	QueryId string              `json:"query_id"` // unique UUID for this query
}

// AutocompleteHandler handles GET /polls/autocomplete?prefix=
// A blank prefix returns an empty hit list.
func (api *API) AutocompleteHandler(c *gin.Context) {
	startTime := time.Now()
	prefix := c.Query("prefix")

	hits := api.polls.Autocomplete(prefix)

	c.JSON(http.StatusOK, AutocompleteResponse{
		Hits:    hits,
		Total:   len(hits),
		Took:    time.Since(startTime).Milliseconds(),
		QueryId: uuid.New().String(),
	})
}

// FuzzySearchHandler handles GET /polls/fuzzy-search?q=&max_distance=
// max_distance is optional; when absent the configured default applies.
func (api *API) FuzzySearchHandler(c *gin.Context) {
	startTime := time.Now()

	query := c.Query("q")
	if query == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "query parameter 'q' is required")
		return
	}

	maxDistance := -1
	if raw := c.Query("max_distance"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "max_distance must be a non-negative integer")
			return
		}
		maxDistance = parsed
	}

	hits, err := api.polls.FuzzySearchTitles(c.Request.Context(), query, maxDistance)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, FuzzySearchResponse{
		Hits:    hits,
		Total:   len(hits),
		Took:    time.Since(startTime).Milliseconds(),
		QueryId: uuid.New().String(),
	})
}
