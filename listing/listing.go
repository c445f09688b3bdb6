package listing

import (
	"sort"

	"civicsync-web/models"
)

// PageSize is the fixed client-side page length of report lists.
const PageSize = 5

// FilterAll disables a filter.
const FilterAll = "all"

// SortOrder values
const (
	Newest = "desc"
	Oldest = "asc"
)

// Item is a report annotated for display.
type Item struct {
	models.Report
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Query describes how a fetched list is narrowed and ordered.
type Query struct {
	Status        string
	Type          string
	Order         string
	Origin        *Point
	ExcludeOwner  string
	OnlyOwner     string
	ExcludeStatus []models.ReportStatus
}

func (q Query) keep(r models.Report) bool {
	if q.Status != "" && q.Status != FilterAll && string(r.Status) != q.Status {
		return false
	}
	if q.Type != "" && q.Type != FilterAll && string(r.IssueType) != q.Type {
		return false
	}
	if q.ExcludeOwner != "" && r.User.ID == q.ExcludeOwner {
		return false
	}
	if q.OnlyOwner != "" && r.User.ID != q.OnlyOwner {
		return false
	}
	for _, s := range q.ExcludeStatus {
		if r.Status == s {
			return false
		}
	}
	return true
}

// Apply filters reports, annotates distances from the origin and sorts them:
// nearest first when an origin is set, otherwise by creation time in q.Order
// (newest first by default). The sort is stable so equal keys keep API order.
func Apply(reports []models.Report, q Query) []Item {
	items := make([]Item, 0, len(reports))
	for _, r := range reports {
		if !q.keep(r) {
			continue
		}
		item := Item{Report: r}
		if q.Origin != nil {
			d := Haversine(q.Origin.Lat, q.Origin.Lng, r.Location.Latitude(), r.Location.Longitude())
			item.DistanceKm = &d
		}
		items = append(items, item)
	}

	switch {
	case q.Origin != nil:
		sort.SliceStable(items, func(i, j int) bool {
			return *items[i].DistanceKm < *items[j].DistanceKm
		})
	case q.Order == Oldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
	return items
}

// PageCount is ceil(total/size).
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Page is one slice of a paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns page (1-based, clamped into range) of items.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	pages := PageCount(len(items), size)
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := min(start+size, len(items))
	if start > len(items) {
		start = len(items)
	}
	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		Total:      len(items),
		TotalPages: pages,
	}
}

// PageWindow returns the page numbers to link around current: two on each
// side, clipped to [1, totalPages]. totalPages below one is treated as one.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	current = max(1, min(current, totalPages))
	start := max(1, current-2)
	end := min(totalPages, current+2)

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}
