package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
)

// Game is a published project: a cover image, a downloadable file and metadata.
// Likes and Dislikes hold lowercased logins and a login is never in both at once.
type Game struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image"`
	File        string   `json:"file"`
	Author      string   `json:"author"`
	AuthorKey   string   `json:"authorKey"`
	Description string   `json:"description"`
	Downloads   int      `json:"downloads"`
	Created     int64    `json:"created"`
	Likes       []string `json:"likes"`
	Dislikes    []string `json:"dislikes"`
}

// VoteAction is the requested vote operation
type VoteAction int

const (
	ActionLike VoteAction = iota
	ActionDislike
)

// VoteState is the resulting vote of a single user on a single game
type VoteState int

const (
	VoteNeutral VoteState = iota
	VoteLiked
	VoteDisliked
)

// Stringer implementation
func (s VoteState) String() string {
	switch s {
	case VoteLiked:
		return "like"
	case VoteDisliked:
		return "dislike"
	default:
		return ""
	}
}

// VoteOf returns the current vote state of the given user on the game
func (g *Game) VoteOf(login string) VoteState {
	lower := strings.ToLower(login)
	for _, l := range g.Likes {
		if l == lower {
			return VoteLiked
		}
	}
	for _, d := range g.Dislikes {
		if d == lower {
			return VoteDisliked
		}
	}
	return VoteNeutral
}

// CollapseLineBreaks replaces any line break in a title with a single space
func CollapseLineBreaks(s string) string {
	r := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	return r.Replace(s)
}

// ValidateTitle checks the title for emptiness and the configured max length
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError("Title cannot be empty")
	}
	if n := utf8.RuneCountInString(title); n > conf.Options.Limits.TitleMax {
		return ValidationError(fmt.Sprintf("Title is too long (%d / %d)", n, conf.Options.Limits.TitleMax))
	}
	return nil
}

// ValidateDescription checks the description for emptiness and the configured max length
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ValidationError("Description cannot be empty")
	}
	if n := utf8.RuneCountInString(description); n > conf.Options.Limits.DescriptionMax {
		return ValidationError(fmt.Sprintf("Description is too long (%d / %d)", n, conf.Options.Limits.DescriptionMax))
	}
	return nil
}
