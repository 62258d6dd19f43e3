package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TVFXSquad/NewCatroid-Community-Site/conf"
)

// Comment is a single entry in a game's append-only comment log.
// Author and Body are stored already escaped for embedding in markup.
type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Body    string `json:"comment"`
	Created int64  `json:"timestamp"`
}

// ValidateComment checks the raw comment body for emptiness and the configured max length
func ValidateComment(body string) error {
	if strings.TrimSpace(body) == "" {
		return ValidationError("Comment cannot be empty")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(body)); n > conf.Options.Limits.CommentMax {
		return ValidationError(fmt.Sprintf("Comment is too long (%d / %d)", n, conf.Options.Limits.CommentMax))
	}
	return nil
}
