package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gcbaptista/poll-search/internal/obs"
	"github.com/gcbaptista/poll-search/model"
	"github.com/gcbaptista/poll-search/services"
)

// API holds dependencies for API handlers, primarily the poll service.
type API struct {
	polls services.PollService
	log   zerolog.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(polls services.PollService) *API {
	return &API{
		polls: polls,
		log:   obs.Logger("api"),
	}
}

// SetupRoutes defines all the API routes for the poll service.
func SetupRoutes(router *gin.Engine, polls services.PollService) {
	apiHandler := NewAPI(polls)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	pollRoutes := router.Group("/polls")
	{
		pollRoutes.POST("", apiHandler.CreatePollHandler)
		pollRoutes.GET("", apiHandler.ListPollsHandler)
		pollRoutes.GET("/top", apiHandler.TopPollsHandler)
		pollRoutes.GET("/trending", apiHandler.TrendingPollsHandler)
		pollRoutes.GET("/autocomplete", apiHandler.AutocompleteHandler)
		pollRoutes.GET("/fuzzy-search", apiHandler.FuzzySearchHandler)
		pollRoutes.GET("/:id", apiHandler.GetPollHandler)
		pollRoutes.PATCH("/:id", apiHandler.UpdatePollHandler)
		pollRoutes.DELETE("/:id", apiHandler.DeletePollHandler)
		pollRoutes.POST("/:id/vote", apiHandler.VoteHandler)
	}
}

// CreatePollRequest is the JSON body for POST /polls.
type CreatePollRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	IsActive    *bool      `json:"is_active"`
	EndsAt      *time.Time `json:"ends_at"`
	Options     []string   `json:"options"`
}

// UpdatePollRequest is the JSON body for PATCH /polls/:id. Absent fields are
// left unchanged.
type UpdatePollRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	EndsAt      *time.Time `json:"ends_at"`
}

// VoteRequest is the JSON body for POST /polls/:id/vote.
type VoteRequest struct {
	OptionID int64 `json:"option_id" binding:"required"`
}

// ListResponse wraps a page of polls with pagination metadata.
type ListResponse struct {
	Data []model.Poll      `json:"data"`
	Meta services.ListMeta `json:"meta"`
}

// HealthCheckHandler reports service liveness and the current index size.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"indexed_polls": api.polls.IndexSize(),
	})
}

// CreatePollHandler handles POST /polls.
func (api *API) CreatePollHandler(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	poll := model.Poll{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    isActive,
		EndsAt:      req.EndsAt,
	}

	created, err := api.polls.Create(c.Request.Context(), poll, req.Options)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListPollsHandler handles GET /polls with pagination, filtering, and sorting.
func (api *API) ListPollsHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := services.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", "id"),
		Order:  c.DefaultQuery("order", "desc"),
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "is_active must be a boolean")
			return
		}
		query.IsActive = &isActive
	}

	polls, total, err := api.polls.List(c.Request.Context(), query)
	if err != nil {
		SendDomainError(c, err)
		return
	}

	totalPages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, ListResponse{
		Data: polls,
		Meta: services.ListMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	})
}

// GetPollHandler handles GET /polls/:id.
func (api *API) GetPollHandler(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	poll, err := api.polls.Get(c.Request.Context(), id)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// UpdatePollHandler handles PATCH /polls/:id.
func (api *API) UpdatePollHandler(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req UpdatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title != nil && *req.Title == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "title must not be empty",
			ErrorDetail{Field: "title", Message: "must not be empty"})
		return
	}

	updated, err := api.polls.Update(c.Request.Context(), id, services.PollPatch{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePollHandler handles DELETE /polls/:id.
func (api *API) DeletePollHandler(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	if err := api.polls.Delete(c.Request.Context(), id); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "poll deleted"})
}

// VoteHandler handles POST /polls/:id/vote.
func (api *API) VoteHandler(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := api.polls.Vote(c.Request.Context(), id, req.OptionID); err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "vote recorded"})
}

// TopPollsHandler handles GET /polls/top.
func (api *API) TopPollsHandler(c *gin.Context) {
	limit := rankedLimit(c)
	polls, err := api.polls.Top(c.Request.Context(), limit)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": polls})
}

// TrendingPollsHandler handles GET /polls/trending.
func (api *API) TrendingPollsHandler(c *gin.Context) {
	limit := rankedLimit(c)
	polls, err := api.polls.Trending(c.Request.Context(), limit)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": polls})
}

func pollIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "poll id must be an integer")
		return 0, false
	}
	return id, true
}

func rankedLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		limit = 5
	}
	return limit
}
