package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date":       formatDate,
	"paragraphs": paragraphs,
}

func mustParseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// paragraphs splits story content on blank lines.
func paragraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// render executes a page template with the current user and pending flash
// message merged into data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = formErrors{}
	}
	data["CurrentUser"] = currentUser(c)
	data["Flash"] = h.popFlash(c)
	c.HTML(status, name, data)
}

var errorPages = map[int]string{
	http.StatusForbidden:           "403.html",
	http.StatusNotFound:            "404.html",
	http.StatusInternalServerError: "500.html",
}

func (h *Handler) renderError(c *gin.Context, status int) {
	page, ok := errorPages[status]
	if !ok {
		status, page = http.StatusInternalServerError, errorPages[http.StatusInternalServerError]
	}
	h.render(c, status, page, gin.H{"Title": http.StatusText(status)})
}

func (h *Handler) notFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound)
}

// pageError renders the page matching a service error and logs the ones
// that are not the caller's fault.
func (h *Handler) pageError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.renderError(c, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		h.renderError(c, http.StatusForbidden)
	default:
		if h.log != nil {
			fields := append([]interface{}{"err", err}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		h.renderError(c, http.StatusInternalServerError)
	}
}
