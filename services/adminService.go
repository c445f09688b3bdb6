package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"civicsync-web/models"
)

// AdminService wraps the moderation endpoints.
type AdminService struct {
	client *Client
}

func NewAdminService(client *Client) *AdminService {
	return &AdminService{client: client}
}

func (s *AdminService) Dashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var d models.AdminDashboard
	if err := s.client.get(ctx, "/admin/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *AdminService) ListReports(ctx context.Context, q models.AdminReportQuery) (*models.AdminReportPage, error) {
	query := url.Values{}
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}
	set("status", q.Status)
	set("type", q.Type)
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var page models.AdminReportPage
	if err := s.client.get(ctx, "/admin/reports", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *AdminService) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) (*models.Report, error) {
	var report models.Report
	if err := s.client.send(ctx, http.MethodPatch, "/admin/reports/"+url.PathEscape(id)+"/status", update, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
