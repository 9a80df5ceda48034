package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys and headers shared by middleware and handlers.
const (
	ctxUserKey      = "currentUser"
	ctxUserIDKey    = "userId"
	ctxRequestIDKey = "requestId"

	requestIDHeader = "X-Request-ID"
	loginRequired   = "Please log in to access this page."
)

// requestLogger tags the request with an ID and logs it once it completes.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(ctxRequestIDKey, requestID)
	c.Header(requestIDHeader, requestID)

	c.Next()

	if h.log == nil {
		return
	}
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"request_id", requestID,
	}
	if u := currentUser(c); u != nil {
		fields = append(fields, "user_id", u.ID)
	} else if id, ok := c.Get(ctxUserIDKey); ok {
		fields = append(fields, "user_id", id)
	}
	h.log.Infow("http_request", fields...)
}

// recoverPanic turns a handler panic into the 500 page.
func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	if h.log != nil {
		h.log.Errorw("panic_recovered",
			"err", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(ctxRequestIDKey),
		)
	}
	h.renderError(c, http.StatusInternalServerError)
	c.Abort()
}

// loadSession resolves the session cookie to a user. Anything unusable
// leaves the request anonymous and drops the cookie.
func (h *Handler) loadSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}

	userID, err := h.services.ParseToken(token, service.AudienceSession)
	if err != nil {
		h.clearSession(c)
		c.Next()
		return
	}

	u, err := h.services.GetUser(c.Request.Context(), userID)
	switch {
	case err == nil:
		c.Set(ctxUserKey, u)
	case errors.Is(err, service.ErrNotFound):
		h.clearSession(c)
	default:
		if h.log != nil {
			h.log.Errorw("session_user_lookup_failed", "user_id", userID, "err", err)
		}
	}
	c.Next()
}

// requireLogin sends anonymous callers to the login page and back afterwards.
func (h *Handler) requireLogin(c *gin.Context) {
	if currentUser(c) != nil {
		c.Next()
		return
	}
	h.setFlash(c, flashInfo, loginRequired)
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1], service.AudienceAPI)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// a token outlives its account; a deleted user is no longer a caller
	if _, err := h.services.GetUser(c.Request.Context(), userId); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_user_lookup_failed", err, "user_id", userId)
		c.Abort()
		return
	}

	// store in Gin context
	c.Set(ctxUserIDKey, userId)
	c.Next()
}

// currentUser returns the signed-in user, or nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
