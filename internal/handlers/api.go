package handlers

import (
	"errors"
	"net/http"

	"storyhouse/internal/models"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInvalidCredentials = "invalid credentials"
	errStoryNotFound      = "story not found"
	errAuthorNotFound     = "author not found"
	errInternal           = "internal error"
	errInvalidBodyPref    = "invalid body: "
)

// TokenRequest is the credentials payload for the token endpoint.
type TokenRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// TokenResponse carries a bearer token for the API.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthorResponse is a public author profile with their published stories.
type AuthorResponse struct {
	Author  *models.User   `json:"author"`
	Stories []models.Story `json:"stories"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Issue an API token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      TokenRequest  true  "Credentials"
// @Success      200   {object}  TokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/token [post]
func (h *Handler) issueAPIToken(c *gin.Context) {
	var input TokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_token_denied", "username", input.Username)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_token_failed", err, "username", input.Username)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// @Summary      Latest published stories
// @Tags         stories
// @Produce      json
// @Success      200  {array}   models.Story
// @Failure      500  {object}  map[string]string
// @Router       /api/stories [get]
func (h *Handler) apiListStories(c *gin.Context) {
	stories, err := h.services.Feed(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_feed_failed", err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// @Summary      Published story by slug
// @Tags         stories
// @Produce      json
// @Param        slug  path      string  true  "Story slug"
// @Success      200   {object}  models.Story
// @Failure      404   {object}  map[string]string
// @Router       /api/stories/{slug} [get]
func (h *Handler) apiGetStory(c *gin.Context) {
	st, err := h.services.Read(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errStoryNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_story_failed", err, "slug", c.Param("slug"))
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Public author profile
// @Tags         authors
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  AuthorResponse
// @Failure      404       {object}  map[string]string
// @Router       /api/authors/{username} [get]
func (h *Handler) apiGetAuthor(c *gin.Context) {
	author, stories, err := h.services.GetAuthor(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errAuthorNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_author_failed", err, "username", c.Param("username"))
		return
	}
	c.JSON(http.StatusOK, AuthorResponse{Author: author, Stories: stories})
}

// @Summary      Stories of the token's owner, drafts included
// @Tags         stories
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   models.Story
// @Failure      401  {object}  map[string]string
// @Router       /api/me/stories [get]
func (h *Handler) apiMyStories(c *gin.Context) {
	userID := c.GetInt(ctxUserIDKey)
	stories, err := h.services.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_my_stories_failed", err, "user_id", userID)
		return
	}
	c.JSON(http.StatusOK, stories)
}
