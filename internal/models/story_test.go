package models

import (
	"strings"
	"testing"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty body", 0, 1},
		{"single word", 1, 1},
		{"100 words rounds down to zero then clamps", 100, 1},
		{"101 words", 101, 1},
		{"299 words", 299, 1},
		{"300 words is 1.5 rounded to even", 300, 2},
		{"400 words", 400, 2},
		{"500 words is 2.5 rounded to even", 500, 2},
		{"501 words", 501, 3},
		{"700 words is 3.5 rounded to even", 700, 4},
		{"1000 words", 1000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(words(tt.words)); got != tt.want {
				t.Fatalf("ReadingTime(%d words) = %d, want %d", tt.words, got, tt.want)
			}
		})
	}
}

func TestWordCount_Whitespace(t *testing.T) {
	text := "  one\ttwo\n\nthree   four  "
	if got := WordCount(text); got != 4 {
		t.Fatalf("WordCount = %d, want 4", got)
	}
}

func TestStory_ReadingTime(t *testing.T) {
	s := Story{Content: words(1000)}
	if got := s.ReadingTime(); got != 5 {
		t.Fatalf("ReadingTime = %d, want 5", got)
	}
}
