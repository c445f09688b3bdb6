package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// IssueType enum
type IssueType string

const (
	Pothole     IssueType = "Pothole"
	Streetlight IssueType = "Streetlight"
	Graffiti    IssueType = "Graffiti"
	OtherIssue  IssueType = "Other"
)

// IssueTypes lists the selectable issue types in display order.
var IssueTypes = []IssueType{Pothole, Streetlight, Graffiti, OtherIssue}

// Valid reports whether t is one of the known issue types.
func (t IssueType) Valid() bool {
	for _, known := range IssueTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ReportStatus enum
type ReportStatus string

const (
	Pending    ReportStatus = "Pending"
	InProgress ReportStatus = "In Progress"
	Fixed      ReportStatus = "Fixed"
	Rejected   ReportStatus = "Rejected"
)

// ReportStatuses lists every status in workflow order.
var ReportStatuses = []ReportStatus{Pending, InProgress, Fixed, Rejected}

var statusTransitions = map[ReportStatus][]ReportStatus{
	Pending:    {InProgress, Fixed, Rejected},
	InProgress: {Fixed, Rejected},
	Fixed:      nil,
	Rejected:   nil,
}

// Valid reports whether s is one of the known statuses.
func (s ReportStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether no further status change is possible.
func (s ReportStatus) Terminal() bool {
	return s == Fixed || s == Rejected
}

// NextStatuses returns the statuses a report may move to from s.
func (s ReportStatus) NextStatuses() []ReportStatus {
	return statusTransitions[s]
}

// CanTransitionTo reports whether moving from s to next is a forward move.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GeoPoint is a GeoJSON point; Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

func (p GeoPoint) Latitude() float64  { return p.Coordinates[1] }
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// UserRef references the owner of a report or comment. The API sends either
// an embedded user object or a bare id string.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain UserRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = UserRef(p)
	return nil
}

// Report represents a civic issue as the API returns it
type Report struct {
	ID           string       `json:"_id"`
	IssueType    IssueType    `json:"issueType"`
	Description  string       `json:"description"`
	Location     GeoPoint     `json:"location"`
	Address      string       `json:"address,omitempty"`
	ImageURLs    []string     `json:"imageUrls,omitempty"`
	Status       ReportStatus `json:"status"`
	RejectReason string       `json:"rejectReason,omitempty"`
	UpvoteCount  int          `json:"upvoteCount"`
	CommentCount int          `json:"commentCount"`
	HasUpvoted   bool         `json:"hasUpvoted"`
	User         UserRef      `json:"user"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// OwnedBy reports whether userID created the report.
func (r Report) OwnedBy(userID string) bool {
	return userID != "" && r.User.ID == userID
}

// Editable reports whether the owner may still edit or delete the report.
func (r Report) Editable() bool {
	return r.Status == Pending
}

// ReportStats counts reports per status.
type ReportStats struct {
	Total      int `json:"total"`
	Fixed      int `json:"fixed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Rejected   int `json:"rejected"`
}

// CountByStatus tallies reports per status.
func CountByStatus(reports []Report) ReportStats {
	stats := ReportStats{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case Fixed:
			stats.Fixed++
		case Pending:
			stats.Pending++
		case InProgress:
			stats.InProgress++
		case Rejected:
			stats.Rejected++
		}
	}
	return stats
}
