package service

import (
	"errors"

	"storyhouse/internal/repository"
)

// Domain errors; handlers branch on them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrSlugConflict       = errors.New("could not reserve a unique slug, please retry")

	ErrNotFound      = repository.ErrNotFound
	ErrUsernameTaken = repository.ErrUsernameTaken
	ErrEmailTaken    = repository.ErrEmailTaken
)
