package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicsync-web/forms"
	"civicsync-web/models"
	"civicsync-web/utils"
)

//go:embed templates
var templateFS embed.FS

// Renderer executes page templates inside the shared layout, or writes the
// page data as JSON when the client asks for it.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
	now   func() time.Time
}

// New parses the layout, the partials and every page template.
func New(log *zap.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), log: log, now: time.Now}

	base, err := template.New("layout").Funcs(r.funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render writes page with data. JSON is chosen when it is the client's
// preferred format.
func (r *Renderer) Render(c *gin.Context, status int, page string, data gin.H) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(status, data)
		return
	}

	t, ok := r.pages[page]
	if !ok {
		r.log.Error("unknown page template", zap.String("page", page))
		c.String(http.StatusInternalServerError, "render failure")
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error("render page failed", zap.String("page", page), zap.Error(err))
		c.String(http.StatusInternalServerError, "render failure")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"timeAgo": func(t time.Time) string { return utils.TimeAgo(t, r.now()) },
		"km": func(d *float64) string {
			if d == nil {
				return ""
			}
			return fmt.Sprintf("%.1f km", *d)
		},
		"statusClass": func(s models.ReportStatus) string {
			return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
		},
		"add":              func(a, b int) int { return a + b },
		"sub":              func(a, b int) int { return a - b },
		"issueTypes":       func() []models.IssueType { return models.IssueTypes },
		"statuses":         func() []models.ReportStatus { return models.ReportStatuses },
		"selectorDisabled": forms.SelectorDisabled,
		"maxImages":        func() int { return forms.MaxImages },
		"maxDescription":   func() int { return forms.MaxDescriptionLen },
	}
}
