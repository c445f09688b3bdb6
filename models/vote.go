package models

// UpvoteResult is the response of POST /reports/:id/upvote
type UpvoteResult struct {
	Upvotes int `json:"upvotes"`
}

// Eligibility describes what a viewer may do with a report they are looking at.
type Eligibility struct {
	CanUpvote  bool `json:"canUpvote"`
	CanComment bool `json:"canComment"`
	CanEdit    bool `json:"canEdit"`
}

// EligibilityFor applies the client-side interaction rules: admins never upvote
// or comment, owners never upvote their own report, owners edit only while Pending.
func EligibilityFor(viewer *User, report Report) Eligibility {
	if viewer == nil {
		return Eligibility{}
	}
	owner := report.OwnedBy(viewer.ID)
	return Eligibility{
		CanUpvote:  !viewer.IsAdmin() && !owner,
		CanComment: !viewer.IsAdmin(),
		CanEdit:    owner && report.Editable(),
	}
}
