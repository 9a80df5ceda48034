package handlers

import (
	"net/http"
	"strings"

	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session"
	flashCookie   = "flash"

	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
)

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Category string
	Message  string
}

// setCookie writes an HttpOnly, SameSite=Lax cookie scoped to the whole site.
// maxAge 0 makes a browser-session cookie, negative deletes it.
func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.opts.SecureCookies, true)
}

// startSession signs a token for userID and stores it in the session cookie.
func (h *Handler) startSession(c *gin.Context, userID int, remember bool) error {
	ttl, maxAge := h.opts.SessionTTL, 0
	if remember {
		ttl = h.opts.RememberTTL
		maxAge = int(ttl.Seconds())
	}
	token, err := h.services.IssueToken(userID, service.AudienceSession, ttl)
	if err != nil {
		return err
	}
	h.setCookie(c, sessionCookie, token, maxAge)
	return nil
}

func (h *Handler) clearSession(c *gin.Context) {
	h.setCookie(c, sessionCookie, "", -1)
}

// setFlash stores "category|message"; gin URL-escapes cookie values.
func (h *Handler) setFlash(c *gin.Context, category, message string) {
	h.setCookie(c, flashCookie, category+"|"+message, 0)
}

// popFlash reads and clears the pending flash message, if any.
func (h *Handler) popFlash(c *gin.Context) *flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	h.setCookie(c, flashCookie, "", -1)

	category, message, ok := strings.Cut(raw, "|")
	if !ok {
		return &flash{Category: flashInfo, Message: raw}
	}
	return &flash{Category: category, Message: message}
}
