package models

// TypeCount is one bar of the issue-type distribution chart.
type TypeCount struct {
	Type  IssueType `json:"type"`
	Count int       `json:"count"`
}

// AdminDashboard holds the aggregate counts shown on top of the admin panel
type AdminDashboard struct {
	Total            int         `json:"total"`
	Pending          int         `json:"pending"`
	Fixed            int         `json:"fixed"`
	AvgResolution    float64     `json:"avgResolution"`
	TypeDistribution []TypeCount `json:"typeDistribution"`
}

// AdminReportQuery filters and orders GET /admin/reports
type AdminReportQuery struct {
	Status    string `form:"status"`
	Type      string `form:"type"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// AdminReportPage is one server-side page of reports
type AdminReportPage struct {
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Reports []Report `json:"reports"`
}

// StatusUpdate is the payload for PATCH /admin/reports/:id/status
type StatusUpdate struct {
	Status       ReportStatus `json:"status"`
	RejectReason string       `json:"rejectReason,omitempty"`
}
