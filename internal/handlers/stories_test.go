package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func getAs(target string, signedIn bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if signedIn {
		req.AddCookie(sessionCookieFor())
	}
	return req
}

func TestIndex_ListsFeed(t *testing.T) {
	s, _, _, stories := anonymousService()
	stories.feed = []models.Story{
		{Title: "Hello World", Slug: "hello-world", AuthorUsername: "alice", CreatedAt: time.Now()},
		{Title: "Second", Slug: "second", AuthorUsername: "bob", CreatedAt: time.Now()},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/", false))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"/story/hello-world", "Second", "/author/bob", "1 min read"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in index page", want)
		}
	}
}

func TestReadStory(t *testing.T) {
	s, _, _, stories := anonymousService()
	stories.read = &models.Story{
		Title:          "Hello World",
		Content:        "First paragraph.\n\nSecond paragraph.",
		Slug:           "hello-world",
		AuthorUsername: "alice",
		Published:      true,
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/story/hello-world", false))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<p>Second paragraph.</p>") {
		t.Fatalf("expected content split into paragraphs: %s", w.Body.String())
	}

	stories.read, stories.readErr = nil, service.ErrNotFound
	w = httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/story/draft", false))
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft or missing story: got %d, want 404", w.Code)
	}
}

func TestNoRoute_Renders404(t *testing.T) {
	s, _, _, _ := anonymousService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/no/such/page", false))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Not Found") {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
}

func TestBindForm_BlankContentIsRequired(t *testing.T) {
	registerValidators()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = postForm("/write", url.Values{"title": {"ok"}, "content": {" \t\n "}})

	var form storyForm
	errs := bindForm(c, &form, "title", "subtitle")
	if errs["content"] != "This field is required." {
		t.Fatalf("content error: got %q (all: %v)", errs["content"], errs)
	}
	if _, ok := errs["title"]; ok {
		t.Fatalf("title should be valid: %v", errs)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = postForm("/write", url.Values{"title": {"ok"}, "content": {"  indented\n"}})
	form = storyForm{}
	if errs := bindForm(c, &form, "title", "subtitle"); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
	if form.Content != "  indented\n" {
		t.Fatalf("content must be stored as written, got %q", form.Content)
	}
}

func TestWriteStory(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		saveErr    error
		wantStatus int
		wantText   string
		wantCalls  int
	}{
		{
			name:       "saved",
			form:       url.Values{"title": {" Hello World "}, "content": {"body"}, "published": {"true"}},
			wantStatus: http.StatusFound,
			wantCalls:  1,
		},
		{
			name:       "missing title",
			form:       url.Values{"title": {"   "}, "content": {"body"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "This field is required.",
		},
		{
			name:       "title too long",
			form:       url.Values{"title": {strings.Repeat("t", 201)}, "content": {"body"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "cannot be longer than 200 characters",
		},
		{
			name:       "subtitle too long",
			form:       url.Values{"title": {"ok"}, "subtitle": {strings.Repeat("s", 301)}, "content": {"body"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "cannot be longer than 300 characters",
		},
		{
			name:       "missing content",
			form:       url.Values{"title": {"ok"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "This field is required.",
		},
		{
			name:       "whitespace-only content",
			form:       url.Values{"title": {"ok"}, "content": {"   \n  "}},
			wantStatus: http.StatusBadRequest,
			wantText:   "This field is required.",
		},
		{
			name:       "slug race lost",
			form:       url.Values{"title": {"Hello"}, "content": {"body"}},
			saveErr:    service.ErrSlugConflict,
			wantStatus: http.StatusConflict,
			wantText:   "please save again",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, stories := signedInService(alice)
			stories.saveErr = tt.saveErr
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, postForm("/write", tt.form, sessionCookieFor()))

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if stories.createCalls != tt.wantCalls {
				t.Fatalf("Create calls: got %d, want %d", stories.createCalls, tt.wantCalls)
			}
			if tt.wantText != "" && !strings.Contains(w.Body.String(), tt.wantText) {
				t.Fatalf("expected %q in body", tt.wantText)
			}
			if tt.wantStatus == http.StatusFound {
				if w.Header().Get("Location") != "/dashboard" {
					t.Fatalf("Location: got %q", w.Header().Get("Location"))
				}
				if stories.lastCreate.Title != "Hello World" || !stories.lastCreate.Published {
					t.Fatalf("unexpected params %+v", stories.lastCreate)
				}
				fl := findCookie(w.Result(), flashCookie)
				if msg, _ := url.QueryUnescape(fl.Value); msg != flashSuccess+"|"+msgStorySaved {
					t.Fatalf("flash: got %q", msg)
				}
			}
		})
	}
}

func TestEditStory_Ownership(t *testing.T) {
	valid := url.Values{"title": {"Hijack"}, "content": {"x"}}

	tests := []struct {
		name       string
		ownedErr   error
		path       string
		wantStatus int
	}{
		{"non-owner", service.ErrForbidden, "/edit/5", http.StatusForbidden},
		{"missing", service.ErrNotFound, "/edit/5", http.StatusNotFound},
		{"not a number", nil, "/edit/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, stories := signedInService(alice)
			stories.owned = &models.Story{ID: 5, UserID: alice.ID}
			stories.ownedErr = tt.ownedErr
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, getAs(tt.path, true))
			if w.Code != tt.wantStatus {
				t.Fatalf("GET: got %d, want %d", w.Code, tt.wantStatus)
			}

			w = httptest.NewRecorder()
			r.ServeHTTP(w, postForm(tt.path, valid, sessionCookieFor()))
			if w.Code != tt.wantStatus {
				t.Fatalf("POST: got %d, want %d", w.Code, tt.wantStatus)
			}

			// invalid forms must not reveal anything to a non-owner either
			w = httptest.NewRecorder()
			r.ServeHTTP(w, postForm(tt.path, url.Values{}, sessionCookieFor()))
			if w.Code != tt.wantStatus {
				t.Fatalf("POST empty: got %d, want %d", w.Code, tt.wantStatus)
			}

			if stories.updateCalls != 0 {
				t.Fatalf("story must stay unchanged, Update called %d times", stories.updateCalls)
			}
		})
	}
}

func TestEditStory_PrefillsAndUpdates(t *testing.T) {
	s, _, _, stories := signedInService(alice)
	stories.owned = &models.Story{ID: 5, UserID: alice.ID, Title: "Old title", Content: "Old body", Published: true}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/edit/5", true))
	if w.Code != http.StatusOK {
		t.Fatalf("GET: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `value="Old title"`) || !strings.Contains(body, "Old body") || !strings.Contains(body, "checked") {
		t.Fatalf("expected a pre-filled form: %s", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postForm("/edit/5", url.Values{"title": {"New title"}, "content": {"New body"}}, sessionCookieFor()))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("POST: got %d to %q", w.Code, w.Header().Get("Location"))
	}
	if stories.updateCalls != 1 {
		t.Fatalf("expected one Update, got %d", stories.updateCalls)
	}
}

func TestDeleteStory(t *testing.T) {
	tests := []struct {
		name         string
		delErr       error
		wantStatus   int
		wantLocation string
	}{
		{"owner", nil, http.StatusFound, "/dashboard"},
		{"non-owner", service.ErrForbidden, http.StatusForbidden, ""},
		{"missing", service.ErrNotFound, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, stories := signedInService(alice)
			stories.delErr = tt.delErr
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, getAs("/delete/5", true))
			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Fatalf("Location: got %q", w.Header().Get("Location"))
			}
		})
	}
}

func TestDashboard_ShowsDrafts(t *testing.T) {
	s, _, _, stories := signedInService(alice)
	stories.mine = []models.Story{
		{ID: 2, Title: "Unfinished", Slug: "unfinished"},
		{ID: 1, Title: "Out there", Slug: "out-there", Published: true},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, getAs("/dashboard", true))
	body := w.Body.String()
	if !strings.Contains(body, "Unfinished <small>(draft)</small>") || !strings.Contains(body, "/story/out-there") {
		t.Fatalf("unexpected dashboard: %s", body)
	}
	if !strings.Contains(body, "/edit/2") || !strings.Contains(body, "/delete/1") {
		t.Fatalf("expected edit and delete links")
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("one\r\n\r\ntwo\n\n\n\n  three  \n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
