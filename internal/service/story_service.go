package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storyhouse/internal/models"
	"storyhouse/internal/repository"
	"storyhouse/internal/slug"

	"github.com/cenkalti/backoff/v5"
)

const (
	// FeedLimit caps the public front page.
	FeedLimit = 20

	// A concurrent writer can claim the probed slug between probe and insert;
	// the unique index rejects it and the whole transaction is replayed.
	slugRetryAttempts = 3
	slugRetryDelay    = 50 * time.Millisecond
)

type StoryService struct {
	stories repository.StoryRepo
	tx      repository.Transactor
}

func NewStoryService(stories repository.StoryRepo, tx repository.Transactor) *StoryService {
	return &StoryService{stories: stories, tx: tx}
}

func (s *StoryService) Feed(ctx context.Context) ([]models.Story, error) {
	return s.stories.ListPublished(ctx, FeedLimit)
}

func (s *StoryService) Dashboard(ctx context.Context, userID int) ([]models.Story, error) {
	return s.stories.ListByAuthor(ctx, userID)
}

// Read returns a published story by slug. Drafts are not found.
func (s *StoryService) Read(ctx context.Context, slug string) (*models.Story, error) {
	return s.stories.GetPublishedBySlug(ctx, slug)
}

// GetOwned loads a story for its author: ErrNotFound when missing,
// ErrForbidden when callerID is someone else.
func (s *StoryService) GetOwned(ctx context.Context, id, callerID int) (*models.Story, error) {
	return ownedStory(ctx, s.stories, id, callerID)
}

// Create persists a new story owned by ownerID under a freshly reserved slug.
func (s *StoryService) Create(ctx context.Context, ownerID int, p StoryParams) (*models.Story, error) {
	p = p.normalized()
	st := &models.Story{
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		Content:   p.Content,
		Published: p.Published,
		UserID:    ownerID,
	}

	err := s.withSlugRetry(ctx, func(ctx context.Context, stores repository.Stores) error {
		next, err := uniqueSlug(ctx, stores.Stories, st.Title, 0)
		if err != nil {
			return err
		}
		st.Slug = next
		_, err = stores.Stories.Create(ctx, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Update overwrites the editable fields and regenerates the slug from the
// title. The story's own slug does not count as a collision, so an unchanged
// title keeps its slug.
func (s *StoryService) Update(ctx context.Context, id, callerID int, p StoryParams) (*models.Story, error) {
	p = p.normalized()
	var updated *models.Story

	err := s.withSlugRetry(ctx, func(ctx context.Context, stores repository.Stores) error {
		st, err := ownedStory(ctx, stores.Stories, id, callerID)
		if err != nil {
			return err
		}
		st.Title = p.Title
		st.Subtitle = p.Subtitle
		st.Content = p.Content
		st.Published = p.Published

		if st.Slug, err = uniqueSlug(ctx, stores.Stories, st.Title, st.ID); err != nil {
			return err
		}
		if err := stores.Stories.Update(ctx, st); err != nil {
			return err
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a story owned by callerID.
func (s *StoryService) Delete(ctx context.Context, id, callerID int) error {
	return s.tx.Atomic(ctx, func(ctx context.Context, stores repository.Stores) error {
		if _, err := ownedStory(ctx, stores.Stories, id, callerID); err != nil {
			return err
		}
		return stores.Stories.Delete(ctx, id)
	})
}

// withSlugRetry replays fn in a new transaction while it fails on the slug
// unique index. Any other error stops immediately.
func (s *StoryService) withSlugRetry(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	operation := func() (struct{}, error) {
		err := s.tx.Atomic(ctx, fn)
		if err == nil || errors.Is(err, repository.ErrSlugTaken) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(slugRetryDelay)),
		backoff.WithMaxTries(slugRetryAttempts),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if errors.Is(err, repository.ErrSlugTaken) {
		return ErrSlugConflict
	}
	return err
}

// uniqueSlug probes base, base-1, base-2, ... until one is free.
func uniqueSlug(ctx context.Context, stories repository.StoryRepo, title string, excludeID int) (string, error) {
	base := slug.Make(title)
	for n := 0; ; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := stories.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func ownedStory(ctx context.Context, stories repository.StoryRepo, id, callerID int) (*models.Story, error) {
	st, err := stories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.UserID != callerID {
		return nil, fmt.Errorf("%w: story %d belongs to user %d", ErrForbidden, id, st.UserID)
	}
	return st, nil
}
