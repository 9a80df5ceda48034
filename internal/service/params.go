package service

import "strings"

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

type ProfileParams struct {
	Username string
	Email    string
	Bio      string
}

type StoryParams struct {
	Title     string
	Subtitle  string
	Content   string
	Published bool
}

func (p RegisterParams) normalized() RegisterParams {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

func (p ProfileParams) normalized() ProfileParams {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	p.Bio = strings.TrimSpace(p.Bio)
	return p
}

func (p StoryParams) normalized() StoryParams {
	p.Title = strings.TrimSpace(p.Title)
	p.Subtitle = strings.TrimSpace(p.Subtitle)
	return p
}
