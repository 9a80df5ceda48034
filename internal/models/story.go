package models

import (
	"math"
	"strings"
	"time"
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

type Story struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Content        string    `json:"content"`
	Slug           string    `json:"slug"`
	Published      bool      `json:"published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         int       `json:"user_id"`
	AuthorUsername string    `json:"author"` // joined from users
}

// ReadingTime is the estimated reading time of the story body in minutes.
func (s Story) ReadingTime() int {
	return ReadingTime(s.Content)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns max(1, round(words/200)) with halves rounded to even,
// so 500 words read in 2 minutes and 700 words in 4.
func ReadingTime(text string) int {
	minutes := int(math.RoundToEven(float64(WordCount(text)) / WordsPerMinute))
	return max(1, minutes)
}
