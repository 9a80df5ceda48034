package service

import (
	"context"

	"storyhouse/internal/models"
	"storyhouse/internal/repository"
)

type ProfileService struct {
	users   repository.UserRepo
	stories repository.StoryRepo
	tx      repository.Transactor
}

func NewProfileService(users repository.UserRepo, stories repository.StoryRepo, tx repository.Transactor) *ProfileService {
	return &ProfileService{users: users, stories: stories, tx: tx}
}

func (s *ProfileService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetAuthor returns the public profile of username with their published stories, newest first.
func (s *ProfileService) GetAuthor(ctx context.Context, username string) (*models.User, []models.Story, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	stories, err := s.stories.ListPublishedByAuthor(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, stories, nil
}

// UpdateProfile changes username, e-mail and bio of userID. Collisions with
// other accounts surface as ErrUsernameTaken / ErrEmailTaken.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int, p ProfileParams) (*models.User, error) {
	p = p.normalized()
	var updated *models.User

	err := s.tx.Atomic(ctx, func(ctx context.Context, stores repository.Stores) error {
		u, err := stores.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		u.Username = p.Username
		u.Email = p.Email
		u.Bio = p.Bio
		if err := stores.Users.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes userID; the store cascades to their stories.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID int) error {
	return s.users.Delete(ctx, userID)
}
