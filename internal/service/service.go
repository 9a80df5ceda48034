package service

import (
	"context"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/repository"
)

// Authorization covers accounts, credentials and the signed session token.
type Authorization interface {
	Register(ctx context.Context, p RegisterParams) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	IssueToken(userID int, audience string, ttl time.Duration) (string, error)
	ParseToken(accessToken, audience string) (int, error)
}

// Profiles exposes user lookups and self-service profile changes.
type Profiles interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetAuthor(ctx context.Context, username string) (*models.User, []models.Story, error)
	UpdateProfile(ctx context.Context, userID int, p ProfileParams) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int) error
}

// Stories is the public feed plus author-only story management.
type Stories interface {
	Feed(ctx context.Context) ([]models.Story, error)
	Dashboard(ctx context.Context, userID int) ([]models.Story, error)
	Read(ctx context.Context, slug string) (*models.Story, error)
	GetOwned(ctx context.Context, id, callerID int) (*models.Story, error)
	Create(ctx context.Context, ownerID int, p StoryParams) (*models.Story, error)
	Update(ctx context.Context, id, callerID int, p StoryParams) (*models.Story, error)
	Delete(ctx context.Context, id, callerID int) error
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Profiles
	Stories
}

func NewService(repos *repository.Repository, signingKey string) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, signingKey),
		Profiles:      NewProfileService(repos.Users, repos.Stories, repos),
		Stories:       NewStoryService(repos.Stories, repos),
	}
}
