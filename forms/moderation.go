package forms

import (
	"fmt"
	"strings"

	"civicsync-web/models"
)

// StatusForm is one admin status change. Current is never bound from the
// request; the handler fills it from the report the API returns.
type StatusForm struct {
	Current      models.ReportStatus `form:"-" json:"-"`
	Status       models.ReportStatus `form:"status" json:"status"`
	RejectReason string              `form:"rejectReason" json:"rejectReason"`
}

// SelectorDisabled reports whether the status selector for a report in
// status s is locked.
func SelectorDisabled(s models.ReportStatus) bool {
	return s.Terminal()
}

// RejectConfirmEnabled reports whether the reject dialog may be confirmed.
func RejectConfirmEnabled(reason string) bool {
	return strings.TrimSpace(reason) != ""
}

// Validate rejects transitions that are not forward moves and rejections
// without a reason. A failed check means the change must not be sent.
func (f *StatusForm) Validate() (models.StatusUpdate, error) {
	f.RejectReason = strings.TrimSpace(f.RejectReason)

	if !f.Current.Valid() || !f.Status.Valid() {
		return models.StatusUpdate{}, &FieldError{Field: "Status", Message: "Unknown status"}
	}
	if SelectorDisabled(f.Current) {
		return models.StatusUpdate{}, &FieldError{Field: "Status", Message: fmt.Sprintf("A %s report can no longer change status", f.Current)}
	}
	if !f.Current.CanTransitionTo(f.Status) {
		return models.StatusUpdate{}, &FieldError{
			Field:   "Status",
			Message: fmt.Sprintf("Cannot move a report from %s to %s", f.Current, f.Status),
		}
	}

	update := models.StatusUpdate{Status: f.Status}
	if f.Status == models.Rejected {
		if !RejectConfirmEnabled(f.RejectReason) {
			return models.StatusUpdate{}, &FieldError{Field: "RejectReason", Message: "Please provide a rejection reason"}
		}
		update.RejectReason = f.RejectReason
	}
	return update, nil
}
