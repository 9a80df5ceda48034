package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"storyhouse/internal/repository"
	"storyhouse/internal/repository/db"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: base, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return readResponse(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return readResponse(b.t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func (b *browser) signUpAndIn(username string) {
	b.t.Helper()
	code, loc, _ := b.post("/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password":  {"password1"},
		"password2": {"password1"},
	})
	require.Equal(b.t, http.StatusFound, code)
	require.Equal(b.t, "/login", loc)

	code, loc, _ = b.post("/login", url.Values{"username": {username}, "password": {"password1"}})
	require.Equal(b.t, http.StatusFound, code)
	require.Equal(b.t, "/dashboard", loc)
}

var editLink = regexp.MustCompile(`/edit/(\d+)`)

func TestEndToEnd_WritePublishAndOwnership(t *testing.T) {
	conn, err := db.InitDB(context.Background(), filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	services := service.NewService(repository.NewRepository(conn), "e2e-secret")
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(NewHandler(services, nil, Options{}).InitRoutes())
	defer srv.Close()

	alice := newBrowser(t, srv.URL)
	alice.signUpAndIn("alice")

	// draft
	code, loc, _ := alice.post("/write", url.Values{"title": {"Hello World"}, "content": {"Once upon a time."}})
	require.Equal(t, http.StatusFound, code)
	require.Equal(t, "/dashboard", loc)

	code, _, body := alice.get("/dashboard")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Hello World <small>(draft)</small>")
	require.Contains(t, body, msgStorySaved)
	m := editLink.FindStringSubmatch(body)
	require.NotNil(t, m)
	storyPath := m[1]

	code, _, _ = alice.get("/story/hello-world")
	require.Equal(t, http.StatusNotFound, code, "drafts are not public")

	// publish
	code, _, _ = alice.post("/edit/"+storyPath, url.Values{
		"title":     {"Hello World"},
		"content":   {"Once upon a time."},
		"published": {"true"},
	})
	require.Equal(t, http.StatusFound, code)

	code, _, body = alice.get("/story/hello-world")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Once upon a time.")

	// same title again
	code, _, _ = alice.post("/write", url.Values{"title": {"Hello World"}, "content": {"Twice."}, "published": {"true"}})
	require.Equal(t, http.StatusFound, code)
	code, _, body = alice.get("/api/stories")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"slug":"hello-world-1"`)

	// another user may read but not touch
	bob := newBrowser(t, srv.URL)
	bob.signUpAndIn("bob")

	code, _, _ = bob.get("/edit/" + storyPath)
	require.Equal(t, http.StatusForbidden, code)
	code, _, _ = bob.post("/edit/"+storyPath, url.Values{"title": {"Mine now"}, "content": {"x"}})
	require.Equal(t, http.StatusForbidden, code)
	code, _, _ = bob.get("/delete/" + storyPath)
	require.Equal(t, http.StatusForbidden, code)

	code, _, body = bob.get("/story/hello-world")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.Contains(body, "Hello World"), "story unchanged after bob's attempts")

	// the author page lists only published work
	code, _, body = bob.get("/author/alice")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "/story/hello-world-1")

	// account deletion takes the stories along
	code, loc, _ = alice.post("/profile/delete", nil)
	require.Equal(t, http.StatusFound, code)
	require.Equal(t, "/", loc)

	code, _, _ = bob.get("/story/hello-world")
	require.Equal(t, http.StatusNotFound, code)

	code, loc, _ = alice.get("/dashboard")
	require.Equal(t, http.StatusFound, code)
	require.True(t, strings.HasPrefix(loc, "/login?next="))
}

func TestEndToEnd_ProfileCollisions(t *testing.T) {
	conn, err := db.InitDB(context.Background(), filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	services := service.NewService(repository.NewRepository(conn), "e2e-secret")
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(NewHandler(services, nil, Options{}).InitRoutes())
	defer srv.Close()

	newBrowser(t, srv.URL).signUpAndIn("bob")
	alice := newBrowser(t, srv.URL)
	alice.signUpAndIn("alice")

	code, _, body := alice.post("/profile", url.Values{"username": {"bob"}, "email": {"alice@example.com"}})
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, body, msgUsernameTaken)

	code, loc, _ := alice.post("/profile", url.Values{"username": {"alicia"}, "email": {"alice@example.com"}, "bio": {"Writer."}})
	require.Equal(t, http.StatusFound, code)
	require.Equal(t, "/profile", loc)

	code, _, body = alice.get("/profile")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `value="alicia"`)
	require.Contains(t, body, msgProfileUpdated)

	// duplicate registration surfaces inline
	code, _, body = newBrowser(t, srv.URL).post("/register", url.Values{
		"username":  {"carol"},
		"email":     {"bob@example.com"},
		"password":  {"password1"},
		"password2": {"password1"},
	})
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, body, msgEmailTaken)
}

func TestEndToEnd_SessionAndAPITokensAreNotInterchangeable(t *testing.T) {
	conn, err := db.InitDB(context.Background(), filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	services := service.NewService(repository.NewRepository(conn), "e2e-secret")
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(NewHandler(services, nil, Options{}).InitRoutes())
	defer srv.Close()

	alice := newBrowser(t, srv.URL)
	alice.signUpAndIn("alice")

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	var sessionToken string
	for _, c := range alice.client.Jar.Cookies(base) {
		if c.Name == sessionCookie {
			sessionToken = c.Value
		}
	}
	require.NotEmpty(t, sessionToken)

	resp, err := http.Post(srv.URL+"/api/auth/token", "application/json",
		strings.NewReader(`{"username":"alice","password":"password1"}`))
	require.NoError(t, err)
	code, _, body := readResponse(t, resp)
	require.Equal(t, http.StatusOK, code)
	var issued TokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &issued))

	bearer := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/me/stories", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		code, _, _ := readResponse(t, resp)
		return code
	}
	require.Equal(t, http.StatusOK, bearer(issued.Token))
	require.Equal(t, http.StatusUnauthorized, bearer(sessionToken), "session cookie used as bearer token")

	// an API token planted as the session cookie leaves the browser anonymous
	intruder := newBrowser(t, srv.URL)
	intruder.client.Jar.SetCookies(base, []*http.Cookie{{Name: sessionCookie, Value: issued.Token, Path: "/"}})
	code, loc, _ := intruder.get("/dashboard")
	require.Equal(t, http.StatusFound, code)
	require.True(t, strings.HasPrefix(loc, "/login?next="))

	// deleting the account revokes the still-unexpired API token
	code, _, _ = alice.post("/profile/delete", nil)
	require.Equal(t, http.StatusFound, code)
	require.Equal(t, http.StatusUnauthorized, bearer(issued.Token))
}
