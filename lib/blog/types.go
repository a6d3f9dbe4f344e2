package blog

import (
	"strings"
	"time"
)

// Status is a comment moderation status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsApproved reports whether s is approved, ignoring case.
func (s Status) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusApproved))
}

// ParseModeration parses a moderation decision. Only approved and rejected
// are accepted.
func ParseModeration(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Rating is the aggregate rating of a post. AverageRating is zero exactly
// when RatingCount is zero.
type Rating struct {
	PostID        string  `json:"postId"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   uint    `json:"ratingCount"`
}

// HasRatings reports whether at least one rating exists.
func (r Rating) HasRatings() bool { return r.RatingCount > 0 }

// Comment is a reader comment. AuthorEmail is only ever sent, never shown.
type Comment struct {
	UUID        string `json:"uuid"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	Body        string `json:"body"`
	Created     string `json:"created"`
	Status      Status `json:"status"`
}

var createdLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedAt parses Created.
func (c Comment) CreatedAt() (time.Time, bool) {
	s := strings.TrimSpace(c.Created)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CommentList is the getComments payload.
type CommentList struct {
	PostID   string    `json:"postId"`
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// CommentReceipt is returned by createComment and moderateComment.
type CommentReceipt struct {
	UUID    string `json:"uuid"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// NewComment is the input of CreateComment.
type NewComment struct {
	AuthorName  string `validate:"required"`
	AuthorEmail string `validate:"required"`
	Body        string `validate:"required"`
}

// Trimmed returns a copy with every field trimmed.
func (n NewComment) Trimmed() NewComment {
	return NewComment{
		AuthorName:  strings.TrimSpace(n.AuthorName),
		AuthorEmail: strings.TrimSpace(n.AuthorEmail),
		Body:        strings.TrimSpace(n.Body),
	}
}

// Approved filters comments down to approved ones, preserving order.
func Approved(comments []Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Status.IsApproved() {
			out = append(out, c)
		}
	}
	return out
}
