package controllers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civicsync-web/forms"
	"civicsync-web/listing"
	"civicsync-web/middlewares"
	"civicsync-web/models"
	"civicsync-web/services"
	"civicsync-web/session"
	"civicsync-web/views"
)

const (
	dashboardView = "dashboard"
	myReportsView = "my-reports"
)

// ReportController serves the report lists, the report form, the detail page
// with its comments and the heatmap.
type ReportController struct {
	reports     *services.ReportService
	comments    *services.CommentService
	geocoder    services.AddressResolver
	lists       *listing.Registry[[]models.Report]
	mapboxToken string
	views       *views.Renderer
	log         *zap.Logger
}

func NewReportController(
	reports *services.ReportService,
	comments *services.CommentService,
	geocoder services.AddressResolver,
	lists *listing.Registry[[]models.Report],
	mapboxToken string,
	v *views.Renderer,
	log *zap.Logger,
) *ReportController {
	if geocoder == nil {
		geocoder = services.NoopResolver{}
	}
	return &ReportController{
		reports:     reports,
		comments:    comments,
		geocoder:    geocoder,
		lists:       lists,
		mapboxToken: mapboxToken,
		views:       v,
		log:         log,
	}
}

// reportRow is one report in a list together with what the viewer may do with it.
type reportRow struct {
	listing.Item
	Eligibility models.Eligibility `json:"eligibility"`
}

type commentRow struct {
	models.Comment
	CanModify bool `json:"canModify"`
}

func rowsFor(viewer *models.User, items []listing.Item) []reportRow {
	rows := make([]reportRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, reportRow{Item: it, Eligibility: models.EligibilityFor(viewer, it.Report)})
	}
	return rows
}

// originParam reads the viewer's position from ?lat=&lng=. Both must parse.
func originParam(c *gin.Context) *listing.Point {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil
	}
	return &listing.Point{Lat: lat, Lng: lng}
}

// load fetches reports through the session's loader for view. The caller
// always gets its own fetch; a response overtaken by a newer request for the
// same view is only logged.
func (r *ReportController) load(c *gin.Context, s *session.Session, view, status, issueType string) ([]models.Report, error) {
	reports, stale, err := r.lists.For(s.ID, view).Load(c.Request.Context(), func(ctx context.Context) ([]models.Report, error) {
		return r.reports.List(ctx, status, issueType)
	})
	if stale {
		r.log.Debug("report list overtaken by a newer request", zap.String("view", view), zap.String("request_id", middlewares.GetRequestID(c)))
	}
	return reports, err
}

// GetAllReports renders the dashboard: other people's open reports, nearest
// first when the viewer's position is known.
func (r *ReportController) GetAllReports(c *gin.Context) {
	s := middlewares.CurrentSession(c)
	status := c.DefaultQuery("status", listing.FilterAll)
	issueType := c.DefaultQuery("type", listing.FilterAll)
	origin := originParam(c)

	data := gin.H{
		"Status":  status,
		"Type":    issueType,
		"Located": origin != nil,
		"Self":    self(c),
		"Rows":    []reportRow{},
		"Pager":   newPager(c.Request.URL, 1, 0),
	}

	reports, err := r.load(c, s, dashboardView, status, issueType)
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "load dashboard failed", err)
		data["Error"] = services.Message(err, "Failed to load reports.")
		r.views.Render(c, failureStatus(err), "dashboard", page(c, "Dashboard", data))
		return
	}

	items := listing.Apply(reports, listing.Query{
		Status:        status,
		Type:          issueType,
		Origin:        origin,
		ExcludeOwner:  s.UserID(),
		ExcludeStatus: []models.ReportStatus{models.Rejected},
	})
	pg := listing.Paginate(items, pageParam(c.Query("page")), listing.PageSize)

	data["Rows"] = rowsFor(s.User, pg.Items)
	data["Pager"] = newPager(c.Request.URL, pg.Page, pg.TotalPages)
	data["Total"] = pg.Total
	r.views.Render(c, http.StatusOK, "dashboard", page(c, "Dashboard", data))
}

// GetReportsByUser renders the viewer's own reports with per-status counts.
func (r *ReportController) GetReportsByUser(c *gin.Context) {
	s := middlewares.CurrentSession(c)
	status := c.DefaultQuery("status", listing.FilterAll)
	issueType := c.DefaultQuery("type", listing.FilterAll)
	order := c.DefaultQuery("order", listing.Newest)
	if order != listing.Oldest {
		order = listing.Newest
	}

	data := gin.H{
		"Status": status,
		"Type":   issueType,
		"Order":  order,
		"Self":   self(c),
		"Stats":  models.ReportStats{},
		"Rows":   []reportRow{},
		"Pager":  newPager(c.Request.URL, 1, 0),
	}

	reports, err := r.load(c, s, myReportsView, listing.FilterAll, listing.FilterAll)
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "load my reports failed", err)
		data["Error"] = "Failed to load reports."
		r.views.Render(c, failureStatus(err), "my_reports", page(c, "My reports", data))
		return
	}

	mine := listing.Apply(reports, listing.Query{OnlyOwner: s.UserID()})
	own := make([]models.Report, 0, len(mine))
	for _, it := range mine {
		own = append(own, it.Report)
	}

	items := listing.Apply(own, listing.Query{Status: status, Type: issueType, Order: order})
	pg := listing.Paginate(items, pageParam(c.Query("page")), listing.PageSize)

	data["Stats"] = models.CountByStatus(own)
	data["Rows"] = rowsFor(s.User, pg.Items)
	data["Pager"] = newPager(c.Request.URL, pg.Page, pg.TotalPages)
	r.views.Render(c, http.StatusOK, "my_reports", page(c, "My reports", data))
}

func (r *ReportController) renderForm(c *gin.Context, status int, form forms.ReportForm, report *models.Report, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Form"] = form
	if report == nil {
		data["Action"] = "/report"
		data["Submit"] = "Submit report"
		r.views.Render(c, status, "report_form", page(c, "Report an issue", data))
		return
	}
	data["Action"] = "/report/" + report.ID + "/edit"
	data["Submit"] = "Save changes"
	data["ExistingImages"] = report.ImageURLs
	r.views.Render(c, status, "report_form", page(c, "Edit report", data))
}

// NewReportPage renders an empty report form, prefilled with ?lat=&lng= when given.
func (r *ReportController) NewReportPage(c *gin.Context) {
	var form forms.ReportForm
	if origin := originParam(c); origin != nil {
		form.Latitude = strconv.FormatFloat(origin.Lat, 'f', -1, 64)
		form.Longitude = strconv.FormatFloat(origin.Lng, 'f', -1, 64)
	}
	r.renderForm(c, http.StatusOK, form, nil, nil)
}

func formImages(c *gin.Context) []*multipart.FileHeader {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return mf.File["images"]
}

// bindReport reads and validates a submitted report form.
func (r *ReportController) bindReport(c *gin.Context, mode forms.Mode) (forms.ReportForm, *services.ReportSubmission, []string, error) {
	var form forms.ReportForm
	_ = c.ShouldBind(&form)

	images, err := forms.ScreenImages(formImages(c))
	if err != nil {
		return form, nil, images.Notices, err
	}
	sub, err := form.Validate(mode, images.Uploads)
	if err != nil {
		return form, nil, images.Notices, err
	}

	if sub.Address == "" {
		address, err := r.geocoder.ResolveAddress(c.Request.Context(), sub.Latitude, sub.Longitude)
		if err != nil {
			r.log.Warn("reverse geocoding failed", zap.Error(err))
		}
		sub.Address = address
	}
	return form, sub, images.Notices, nil
}

// CreateReport handles the creation of a new report
func (r *ReportController) CreateReport(c *gin.Context) {
	form, sub, notices, err := r.bindReport(c, forms.Create)
	if err != nil {
		r.renderForm(c, http.StatusBadRequest, form, nil, gin.H{"Error": err.Error(), "Notices": notices})
		return
	}

	if _, err := r.reports.Create(c.Request.Context(), *sub); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "create report failed", err)
		r.renderForm(c, failureStatus(err), form, nil, gin.H{
			"Error":   services.Message(err, "Submission failed"),
			"Notices": notices,
		})
		return
	}
	redirectWithMessage(c, "/dashboard", "notice", "Thank you for reporting! A confirmation email has been sent.")
}

// ownedPendingReport loads the report in :id and checks that the viewer may
// still change it. On failure it has already redirected.
func (r *ReportController) ownedPendingReport(c *gin.Context) (*models.Report, bool) {
	s := middlewares.CurrentSession(c)
	report, err := r.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if unauthorized(c, err) {
			return nil, false
		}
		logAPIError(r.log, c, "load report failed", err)
		redirectWithMessage(c, "/my-reports", "error", services.Message(err, "Could not load report."))
		return nil, false
	}
	if !report.OwnedBy(s.UserID()) {
		redirectWithMessage(c, "/my-reports", "error", "You can only change your own reports.")
		return nil, false
	}
	if !report.Editable() {
		redirectWithMessage(c, "/my-reports", "error", "Only pending reports can be changed.")
		return nil, false
	}
	return report, true
}

func (r *ReportController) EditReportPage(c *gin.Context) {
	report, ok := r.ownedPendingReport(c)
	if !ok {
		return
	}
	r.renderForm(c, http.StatusOK, forms.FromReport(report), report, nil)
}

// UpdateReport lets the owner change a report while it is Pending
func (r *ReportController) UpdateReport(c *gin.Context) {
	report, ok := r.ownedPendingReport(c)
	if !ok {
		return
	}

	form, sub, notices, err := r.bindReport(c, forms.Edit)
	if err != nil {
		r.renderForm(c, http.StatusBadRequest, form, report, gin.H{"Error": err.Error(), "Notices": notices})
		return
	}

	if _, err := r.reports.Update(c.Request.Context(), report.ID, *sub); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "update report failed", err)
		r.renderForm(c, failureStatus(err), form, report, gin.H{
			"Error":   services.Message(err, "Update failed"),
			"Notices": notices,
		})
		return
	}
	redirectWithMessage(c, "/my-reports", "notice", "Report updated")
}

// DeleteReport allows the creator of a pending report to delete it
func (r *ReportController) DeleteReport(c *gin.Context) {
	report, ok := r.ownedPendingReport(c)
	if !ok {
		return
	}
	if err := r.reports.Delete(c.Request.Context(), report.ID); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "delete report failed", err)
		redirectWithMessage(c, "/my-reports", "error", "Failed to delete.")
		return
	}
	redirectWithMessage(c, "/my-reports", "notice", "Report deleted")
}

// GetReport renders one report with its comments.
func (r *ReportController) GetReport(c *gin.Context) {
	s := middlewares.CurrentSession(c)
	id := c.Param("id")

	var (
		report   *models.Report
		comments []models.Comment
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		report, err = r.reports.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = r.comments.List(ctx, id)
		if err != nil && !services.IsUnauthorized(err) {
			logAPIError(r.log, c, "load comments failed", err)
			comments, err = nil, nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		if unauthorized(c, err) {
			return
		}
		status := failureStatus(err)
		if status != http.StatusNotFound {
			logAPIError(r.log, c, "load report failed", err)
		}
		r.views.Render(c, status, "error", page(c, services.Message(err, "Report not found"), nil))
		return
	}

	if report.Address == "" {
		address, err := r.geocoder.ResolveAddress(c.Request.Context(), report.Location.Latitude(), report.Location.Longitude())
		if err != nil {
			r.log.Warn("reverse geocoding failed", zap.Error(err))
		}
		report.Address = address
	}

	var distance *float64
	if origin := originParam(c); origin != nil {
		d := listing.Haversine(origin.Lat, origin.Lng, report.Location.Latitude(), report.Location.Longitude())
		distance = &d
	}

	rows := make([]commentRow, 0, len(comments))
	for _, cm := range comments {
		rows = append(rows, commentRow{Comment: cm, CanModify: cm.AuthoredBy(s.UserID()) && !s.IsAdmin()})
	}

	r.views.Render(c, http.StatusOK, "report_detail", page(c, string(report.IssueType)+" report", gin.H{
		"Report":      report,
		"Comments":    rows,
		"Distance":    distance,
		"Eligibility": models.EligibilityFor(s.User, *report),
	}))
}

// UpvoteReport records the viewer's upvote and sends the browser back so the
// page is fetched again with the server's count.
func (r *ReportController) UpvoteReport(c *gin.Context) {
	s := middlewares.CurrentSession(c)
	id := c.Param("id")
	next := sanitizeRedirectTarget(c.PostForm("next"), "/reports/"+id)

	report, err := r.reports.Get(c.Request.Context(), id)
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "load report failed", err)
		redirectWithMessage(c, next, "error", services.Message(err, "Report not found"))
		return
	}
	if !models.EligibilityFor(s.User, *report).CanUpvote {
		redirectWithMessage(c, next, "error", "You cannot upvote this report.")
		return
	}

	if _, err := r.reports.Upvote(c.Request.Context(), id); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "upvote failed", err)
		redirectWithMessage(c, next, "error", services.Message(err, "Upvote failed"))
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

// commentGuard refuses comment changes from admins before they reach the API.
func commentGuard(c *gin.Context, target string) bool {
	if middlewares.CurrentSession(c).IsAdmin() {
		redirectWithMessage(c, target, "error", "Admins cannot comment on reports.")
		return false
	}
	return true
}

func (r *ReportController) AddComment(c *gin.Context) {
	id := c.Param("id")
	target := "/reports/" + id
	if !commentGuard(c, target) {
		return
	}

	var form forms.CommentForm
	_ = c.ShouldBind(&form)
	if err := form.Validate(); err != nil {
		redirectWithMessage(c, target, "error", err.Error())
		return
	}
	if _, err := r.comments.Add(c.Request.Context(), id, form.Text); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "add comment failed", err)
		redirectWithMessage(c, target, "error", services.Message(err, "Failed to add comment"))
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func commentTarget(c *gin.Context) string {
	if reportID := c.PostForm("reportId"); reportID != "" {
		return sanitizeRedirectTarget("/reports/"+reportID, "/dashboard")
	}
	return "/dashboard"
}

func (r *ReportController) UpdateComment(c *gin.Context) {
	target := commentTarget(c)
	if !commentGuard(c, target) {
		return
	}

	var form forms.CommentForm
	_ = c.ShouldBind(&form)
	if err := form.Validate(); err != nil {
		redirectWithMessage(c, target, "error", err.Error())
		return
	}
	if _, err := r.comments.Update(c.Request.Context(), c.Param("id"), form.Text); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "update comment failed", err)
		redirectWithMessage(c, target, "error", services.Message(err, "Failed to update comment"))
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (r *ReportController) DeleteComment(c *gin.Context) {
	target := commentTarget(c)
	if !commentGuard(c, target) {
		return
	}
	if err := r.comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "delete comment failed", err)
		redirectWithMessage(c, target, "error", services.Message(err, "Failed to delete comment"))
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Heatmap renders the report density map, framed on the bounding box of
// every plotted coordinate.
func (r *ReportController) Heatmap(c *gin.Context) {
	data := gin.H{"MapboxToken": r.mapboxToken, "GeoJSON": `{"type":"FeatureCollection","features":[]}`, "FeatureCount": 0}

	fc, err := r.reports.Heatmap(c.Request.Context())
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(r.log, c, "load heatmap failed", err)
		data["Error"] = services.Message(err, "Failed to load heatmap data.")
		r.views.Render(c, failureStatus(err), "heatmap", page(c, "Heatmap", data))
		return
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		r.log.Error("encode heatmap failed", zap.Error(err))
		data["Error"] = "Failed to load heatmap data."
		r.views.Render(c, http.StatusInternalServerError, "heatmap", page(c, "Heatmap", data))
		return
	}
	data["GeoJSON"] = string(raw)
	data["Collection"] = fc
	data["FeatureCount"] = len(fc.Features)
	if bounds, ok := fc.BoundingBox(); ok {
		data["Bounds"] = &bounds
	}
	r.views.Render(c, http.StatusOK, "heatmap", page(c, "Heatmap", data))
}
