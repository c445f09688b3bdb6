package services

import (
	"context"
	"net/http"
	"net/url"

	"civicsync-web/models"
)

// CommentService wraps report comments.
type CommentService struct {
	client *Client
}

func NewCommentService(client *Client) *CommentService {
	return &CommentService{client: client}
}

type commentBody struct {
	Text string `json:"text"`
}

func (s *CommentService) List(ctx context.Context, reportID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.client.get(ctx, "/reports/"+url.PathEscape(reportID)+"/comments", nil, &comments)
	return comments, err
}

func (s *CommentService) Add(ctx context.Context, reportID, text string) (*models.Comment, error) {
	var c models.Comment
	if err := s.client.send(ctx, http.MethodPost, "/reports/"+url.PathEscape(reportID)+"/comments", commentBody{Text: text}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentService) Update(ctx context.Context, id, text string) (*models.Comment, error) {
	var c models.Comment
	if err := s.client.send(ctx, http.MethodPut, "/comments/"+url.PathEscape(id), commentBody{Text: text}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, Request{Method: http.MethodDelete, Path: "/comments/" + url.PathEscape(id)}, nil)
}
