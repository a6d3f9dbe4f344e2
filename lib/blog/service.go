// Package blog provides the typed rating and comment operations of the blog
// GraphQL backend.
package blog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pthm/hxblog/lib/graphql"
)

var (
	// ErrRatingRange is returned for ratings outside 1..5.
	ErrRatingRange = errors.New("Rating must be between 1 and 5")

	// ErrEmptyResponse is returned when a successful response has no payload.
	ErrEmptyResponse = errors.New("empty response from blog service")

	// ErrInvalidStatus is returned for moderation decisions other than
	// approved or rejected.
	ErrInvalidStatus = errors.New("status must be approved or rejected")
)

const (
	MinRating = 1
	MaxRating = 5
)

// RequestError carries the message of a failed GraphQL request.
type RequestError struct {
	Op      string
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// Requester is the subset of graphql.Client used by Service.
type Requester interface {
	Do(ctx context.Context, query string, variables map[string]any, out any) graphql.Result
}

// Service exposes the blog operations.
type Service struct {
	client Requester
	log    *slog.Logger
}

// NewService creates a Service. A nil logger means slog.Default().
func NewService(client Requester, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, log: log}
}

func (s *Service) do(ctx context.Context, op, query string, vars map[string]any, out any) error {
	res := s.client.Do(ctx, query, vars, out)
	if !res.Success {
		s.log.DebugContext(ctx, "blog request failed", slog.String("op", op), slog.String("error", res.Error))
		return &RequestError{Op: op, Message: res.Error}
	}
	return nil
}

// GetRating fetches the rating of a post.
func (s *Service) GetRating(ctx context.Context, postID string) (Rating, error) {
	var out struct {
		Blog *struct {
			GetRating *Rating `json:"getRating"`
		} `json:"blog"`
	}
	if err := s.do(ctx, "getRating", queryGetRating, map[string]any{"postId": postID}, &out); err != nil {
		return Rating{}, err
	}
	if out.Blog == nil || out.Blog.GetRating == nil {
		return Rating{}, ErrEmptyResponse
	}
	return *out.Blog.GetRating, nil
}

// RatePost submits a rating. Values outside 1..5 are rejected locally.
func (s *Service) RatePost(ctx context.Context, postID string, rating int) (Rating, error) {
	if rating < MinRating || rating > MaxRating {
		return Rating{}, ErrRatingRange
	}
	var out struct {
		Blog *struct {
			RatePost *Rating `json:"ratePost"`
		} `json:"blog"`
	}
	vars := map[string]any{"postId": postID, "rating": rating}
	if err := s.do(ctx, "ratePost", mutationRatePost, vars, &out); err != nil {
		return Rating{}, err
	}
	if out.Blog == nil || out.Blog.RatePost == nil {
		return Rating{}, ErrEmptyResponse
	}
	return *out.Blog.RatePost, nil
}

// GetComments fetches the comment list of a post as returned by the
// backend. Use Approved or GetApprovedComments for display.
func (s *Service) GetComments(ctx context.Context, postID string) (CommentList, error) {
	var out struct {
		Blog *struct {
			GetComments *CommentList `json:"getComments"`
		} `json:"blog"`
	}
	if err := s.do(ctx, "getComments", queryGetComments, map[string]any{"postId": postID}, &out); err != nil {
		return CommentList{}, err
	}
	if out.Blog == nil || out.Blog.GetComments == nil {
		return CommentList{}, ErrEmptyResponse
	}
	return *out.Blog.GetComments, nil
}

// GetApprovedComments returns only the approved comments of a post.
func (s *Service) GetApprovedComments(ctx context.Context, postID string) ([]Comment, error) {
	list, err := s.GetComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return Approved(list.Comments), nil
}

// CreateComment submits a new comment for moderation.
// Fields are trimmed and must be non-empty; an invalid comment returns a
// *ValidationError without a network call.
func (s *Service) CreateComment(ctx context.Context, postID string, c NewComment) (CommentReceipt, error) {
	c = c.Trimmed()
	if err := c.Validate(); err != nil {
		return CommentReceipt{}, err
	}
	var out struct {
		Blog *struct {
			CreateComment *CommentReceipt `json:"createComment"`
		} `json:"blog"`
	}
	vars := map[string]any{
		"postId":      postID,
		"authorName":  c.AuthorName,
		"authorEmail": c.AuthorEmail,
		"body":        c.Body,
	}
	if err := s.do(ctx, "createComment", mutationCreateComment, vars, &out); err != nil {
		return CommentReceipt{}, err
	}
	if out.Blog == nil || out.Blog.CreateComment == nil {
		return CommentReceipt{}, ErrEmptyResponse
	}
	return *out.Blog.CreateComment, nil
}

// ModerateComment approves or rejects a comment.
func (s *Service) ModerateComment(ctx context.Context, commentID string, status Status) (CommentReceipt, error) {
	if status != StatusApproved && status != StatusRejected {
		return CommentReceipt{}, ErrInvalidStatus
	}
	var out struct {
		Blog *struct {
			ModerateComment *CommentReceipt `json:"moderateComment"`
		} `json:"blog"`
	}
	vars := map[string]any{"commentId": commentID, "status": string(status)}
	if err := s.do(ctx, "moderateComment", mutationModerateComment, vars, &out); err != nil {
		return CommentReceipt{}, err
	}
	if out.Blog == nil || out.Blog.ModerateComment == nil {
		return CommentReceipt{}, ErrEmptyResponse
	}
	return *out.Blog.ModerateComment, nil
}
