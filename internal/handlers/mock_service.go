package handlers

import (
	"context"
	"net/http"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser  *models.User
	registerErr   error
	authUser      *models.User
	authErr       error
	genTokenToken string
	genTokenErr   error
	issueErr      error
	parseID       int
	parseErr      error

	lastRegister    service.RegisterParams
	registerCalls   int
	lastGenUsername string
	lastGenPassword string
	lastIssueTTL    time.Duration
	lastIssueAud    string
	lastParseToken  string
	lastParseAud    string
}

func (m *mockAuth) Register(ctx context.Context, p service.RegisterParams) (*models.User, error) {
	m.registerCalls++
	m.lastRegister = p
	return m.registerUser, m.registerErr
}
func (m *mockAuth) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return m.authUser, m.authErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) IssueToken(userID int, audience string, ttl time.Duration) (string, error) {
	m.lastIssueTTL = ttl
	m.lastIssueAud = audience
	if m.issueErr != nil {
		return "", m.issueErr
	}
	return "session-token", nil
}
func (m *mockAuth) ParseToken(token, audience string) (int, error) {
	m.lastParseToken = token
	m.lastParseAud = audience
	return m.parseID, m.parseErr
}

type mockProfiles struct {
	user          *models.User
	userErr       error
	author        *models.User
	authorStories []models.Story
	authorErr     error
	updateErr     error
	deleteErr     error

	lastUpdate  service.ProfileParams
	deleteCalls int
}

func (m *mockProfiles) GetUser(ctx context.Context, id int) (*models.User, error) {
	return m.user, m.userErr
}
func (m *mockProfiles) GetAuthor(ctx context.Context, username string) (*models.User, []models.Story, error) {
	return m.author, m.authorStories, m.authorErr
}
func (m *mockProfiles) UpdateProfile(ctx context.Context, userID int, p service.ProfileParams) (*models.User, error) {
	m.lastUpdate = p
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.User{ID: userID, Username: p.Username, Email: p.Email, Bio: p.Bio}, nil
}
func (m *mockProfiles) DeleteAccount(ctx context.Context, userID int) error {
	m.deleteCalls++
	return m.deleteErr
}

type mockStories struct {
	feed     []models.Story
	feedErr  error
	mine     []models.Story
	read     *models.Story
	readErr  error
	owned    *models.Story
	ownedErr error
	saveErr  error
	delErr   error

	lastCreate  service.StoryParams
	createCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockStories) Feed(ctx context.Context) ([]models.Story, error) {
	return m.feed, m.feedErr
}
func (m *mockStories) Dashboard(ctx context.Context, userID int) ([]models.Story, error) {
	return m.mine, nil
}
func (m *mockStories) Read(ctx context.Context, slug string) (*models.Story, error) {
	return m.read, m.readErr
}
func (m *mockStories) GetOwned(ctx context.Context, id, callerID int) (*models.Story, error) {
	return m.owned, m.ownedErr
}
func (m *mockStories) Create(ctx context.Context, ownerID int, p service.StoryParams) (*models.Story, error) {
	m.createCalls++
	m.lastCreate = p
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &models.Story{ID: 1, Title: p.Title, UserID: ownerID}, nil
}
func (m *mockStories) Update(ctx context.Context, id, callerID int, p service.StoryParams) (*models.Story, error) {
	m.updateCalls++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &models.Story{ID: id, Title: p.Title, UserID: callerID}, nil
}
func (m *mockStories) Delete(ctx context.Context, id, callerID int) error {
	m.deleteCalls++
	return m.delErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// signedInService returns mocks whose session cookie resolves to user.
func signedInService(user *models.User) (*service.Service, *mockAuth, *mockProfiles, *mockStories) {
	auth := &mockAuth{parseID: user.ID}
	profiles := &mockProfiles{user: user}
	stories := &mockStories{}
	return &service.Service{Authorization: auth, Profiles: profiles, Stories: stories}, auth, profiles, stories
}

func anonymousService() (*service.Service, *mockAuth, *mockProfiles, *mockStories) {
	auth := &mockAuth{}
	profiles := &mockProfiles{}
	stories := &mockStories{}
	return &service.Service{Authorization: auth, Profiles: profiles, Stories: stories}, auth, profiles, stories
}

func sessionCookieFor() *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: "session-token"}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// findCookie returns the named Set-Cookie from a response, or nil.
func findCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
