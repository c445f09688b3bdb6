package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civicsync-web/forms"
	"civicsync-web/listing"
	"civicsync-web/models"
	"civicsync-web/services"
	"civicsync-web/views"
)

// AdminPageSize is the server-side page length of the moderation table.
const AdminPageSize = 10

type AdminController struct {
	admin   *services.AdminService
	reports *services.ReportService
	views   *views.Renderer
	log     *zap.Logger
}

func NewAdminController(admin *services.AdminService, reports *services.ReportService, v *views.Renderer, log *zap.Logger) *AdminController {
	return &AdminController{admin: admin, reports: reports, views: v, log: log}
}

func adminQuery(c *gin.Context) models.AdminReportQuery {
	var q models.AdminReportQuery
	_ = c.ShouldBindQuery(&q)
	if q.Status == listing.FilterAll {
		q.Status = ""
	}
	if q.Type == listing.FilterAll {
		q.Type = ""
	}
	if q.SortBy != "upvotes" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	q.Page = max(q.Page, 1)
	q.Limit = AdminPageSize
	return q
}

// GetAdminPanel loads the dashboard counts and one page of reports concurrently.
func (a *AdminController) GetAdminPanel(c *gin.Context) {
	q := adminQuery(c)

	var (
		dashboard *models.AdminDashboard
		result    *models.AdminReportPage
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		dashboard, err = a.admin.Dashboard(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		result, err = a.admin.ListReports(ctx, q)
		return err
	})

	data := gin.H{
		"Query":   q,
		"Self":    self(c),
		"Reports": []models.Report{},
		"Pager":   newPager(c.Request.URL, q.Page, 0),
	}

	if err := g.Wait(); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(a.log, c, "load admin panel failed", err)
		data["Error"] = "Failed to load reports."
		a.views.Render(c, failureStatus(err), "admin", page(c, "Admin", data))
		return
	}

	totalPages := listing.PageCount(result.Total, AdminPageSize)
	data["Dashboard"] = dashboard
	data["Reports"] = result.Reports
	data["Total"] = result.Total
	data["Pager"] = newPager(c.Request.URL, q.Page, totalPages)
	a.views.Render(c, http.StatusOK, "admin", page(c, "Admin", data))
}

func rejectPath(id, next string) string {
	return "/admin/reports/" + url.PathEscape(id) + "/reject?" + url.Values{"next": {next}}.Encode()
}

// RejectPage asks for the rejection reason. Confirm stays disabled until a
// reason is typed.
func (a *AdminController) RejectPage(c *gin.Context) {
	next := sanitizeRedirectTarget(c.Query("next"), "/admin")

	report, err := a.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(a.log, c, "load report failed", err)
		redirectWithMessage(c, next, "error", services.Message(err, "Report not found"))
		return
	}
	if !report.Status.CanTransitionTo(models.Rejected) {
		redirectWithMessage(c, next, "error", "A "+string(report.Status)+" report can no longer be rejected")
		return
	}

	a.views.Render(c, http.StatusOK, "reject_confirm", page(c, "Reject report", gin.H{
		"Report":         report,
		"Next":           next,
		"ConfirmEnabled": forms.RejectConfirmEnabled(""),
	}))
}

// UpdateReportStatus applies one moderation step. The report's current status
// is read from the API; illegal moves are refused before the update call, and
// a rejection without a reason is sent to the confirm page instead.
func (a *AdminController) UpdateReportStatus(c *gin.Context) {
	id := c.Param("id")
	next := sanitizeRedirectTarget(c.PostForm("next"), "/admin")

	var form forms.StatusForm
	_ = c.ShouldBind(&form)

	report, err := a.reports.Get(c.Request.Context(), id)
	if err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(a.log, c, "load report failed", err)
		redirectWithMessage(c, next, "error", services.Message(err, "Report not found"))
		return
	}
	form.Current = report.Status

	update, err := form.Validate()
	if err != nil {
		var fe *forms.FieldError
		if errors.As(err, &fe) && fe.Field == "RejectReason" {
			redirectWithMessage(c, rejectPath(id, next), "error", fe.Message)
			return
		}
		redirectWithMessage(c, next, "error", err.Error())
		return
	}

	if _, err := a.admin.UpdateStatus(c.Request.Context(), id, update); err != nil {
		if unauthorized(c, err) {
			return
		}
		logAPIError(a.log, c, "update status failed", err)
		redirectWithMessage(c, next, "error", services.Message(err, "Failed to update status"))
		return
	}
	redirectWithMessage(c, next, "notice", "Status updated to "+string(update.Status))
}
