package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"civicsync-web/models"
)

// FilterAll is the wire value meaning "no filter".
const FilterAll = "all"

// ReportService wraps the /reports endpoints.
type ReportService struct {
	client *Client
}

func NewReportService(client *Client) *ReportService {
	return &ReportService{client: client}
}

// Upload is one image attached to a report submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportSubmission is the multipart body of a create or update call.
type ReportSubmission struct {
	IssueType   models.IssueType
	Latitude    float64
	Longitude   float64
	Description string
	Address     string
	Images      []Upload
}

// List fetches reports matching the status and type filters. Empty filters
// are sent as "all".
func (s *ReportService) List(ctx context.Context, status, issueType string) ([]models.Report, error) {
	if status == "" {
		status = FilterAll
	}
	if issueType == "" {
		issueType = FilterAll
	}
	var reports []models.Report
	err := s.client.get(ctx, "/reports", url.Values{"status": {status}, "type": {issueType}}, &reports)
	return reports, err
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.client.get(ctx, "/reports/"+url.PathEscape(id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) Create(ctx context.Context, sub ReportSubmission) (*models.Report, error) {
	return s.submit(ctx, http.MethodPost, "/reports", sub)
}

// Update replaces a Pending report's fields; images, when present, are added.
func (s *ReportService) Update(ctx context.Context, id string, sub ReportSubmission) (*models.Report, error) {
	return s.submit(ctx, http.MethodPut, "/reports/"+url.PathEscape(id), sub)
}

func (s *ReportService) submit(ctx context.Context, method, path string, sub ReportSubmission) (*models.Report, error) {
	body, contentType, err := encodeSubmission(sub)
	if err != nil {
		return nil, err
	}
	var report models.Report
	err = s.client.Do(ctx, Request{Method: method, Path: path, Body: body, ContentType: contentType}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, Request{Method: http.MethodDelete, Path: "/reports/" + url.PathEscape(id)}, nil)
}

// Upvote registers the caller's upvote and returns the new count.
func (s *ReportService) Upvote(ctx context.Context, id string) (int, error) {
	var out models.UpvoteResult
	if err := s.client.send(ctx, http.MethodPost, "/reports/"+url.PathEscape(id)+"/upvote", nil, &out); err != nil {
		return 0, err
	}
	return out.Upvotes, nil
}

func (s *ReportService) Heatmap(ctx context.Context) (*models.FeatureCollection, error) {
	var fc models.FeatureCollection
	if err := s.client.get(ctx, "/reports/heatmap", nil, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func encodeSubmission(sub ReportSubmission) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"issueType", string(sub.IssueType)},
		{"latitude", strconv.FormatFloat(sub.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(sub.Longitude, 'f', -1, 64)},
		{"description", sub.Description},
	}
	if sub.Address != "" {
		fields = append(fields, [2]string{"address", sub.Address})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("encode report field %s: %w", f[0], err)
		}
	}

	for _, img := range sub.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		h.Set("Content-Type", img.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("encode report image: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("encode report image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode report: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
