// Package view renders console state to HTML. Rendering never calls the
// backend; everything it shows comes from console.State.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/kalambet/qareview/internal/console"
	"github.com/kalambet/qareview/internal/format"
	"github.com/kalambet/qareview/internal/kb"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and script, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// documentIcons maps a reviewed document name to its grid icon.
var documentIcons = map[string]string{
	"接线类":              "🔌",
	"电机类":              "⚙️",
	"触摸屏类":             "📱",
	"程序类":              "💻",
	"产品型号功能类":          "📦",
	"产品维修类":            "🔧",
	"产品功能类":            "⚡",
	"modbus通信地址表_SEN类": "📡",
	"产品知识类":            "📖",
	"通信参数类":            "📊",
	"下载功能类":            "💾",
	"咨询类":              "💬",
	"通讯类":              "📨",
	"操作类":              "🎮",
}

const defaultIcon = "📄"

// DocumentIcon returns the grid icon for a document name.
func DocumentIcon(name string) string {
	if icon, ok := documentIcons[name]; ok {
		return icon
	}
	return defaultIcon
}

// Renderer renders pages and area fragments.
type Renderer struct {
	tmpl *template.Template
	loc  *time.Location
	now  func() time.Time
}

// New parses the embedded templates. Timestamps render in loc.
func New(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{loc: loc, now: time.Now}
	tmpl, err := template.New("console").Funcs(r.funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"timestamp": func(e kb.Epoch) string { return format.Timestamp(int64(e), r.loc) },
		"datetime":  func(e kb.Epoch) string { return format.DateTime(int64(e), r.loc) },
		"rows":      func(text string, minRows, maxRows int) int { return format.TextareaRows(text, minRows, maxRows) },
		"icon":      DocumentIcon,
		"percent":   func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
		"multiline": multiline,
		"add":       func(a, b int) int { return a + b },
		"pager":     func(area console.Area, info console.PageInfo) pager { return pager{Area: area, PageInfo: info} },
		"method":    methodClass,
	}
}

type pager struct {
	Area console.Area
	console.PageInfo
}

func methodClass(m kb.AddMethod) string {
	switch m.Normalize() {
	case kb.AddMethodLegacy:
		return "method-legacy"
	case kb.AddMethodDailyImport:
		return "method-daily"
	case kb.AddMethodManual:
		return "method-manual"
	case kb.AddMethodUser:
		return "method-user"
	default:
		return "method-unknown"
	}
}

// multiline escapes text and keeps its line breaks.
func multiline(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(format.Escape(s), "\n", "<br>"))
}

// Page renders the full console document. Queued toasts are drained.
func (r *Renderer) Page(w io.Writer, st *console.State) error {
	return r.execute(w, "page", r.data(st, true))
}

// Shell renders everything inside the page root. Queued toasts are drained.
func (r *Renderer) Shell(w io.Writer, st *console.State) error {
	return r.execute(w, "shell", r.data(st, true))
}

// Area renders one fragment. An area that is not on screen renders empty.
// Only the toasts area drains the toast queue.
func (r *Renderer) Area(w io.Writer, area console.Area, st *console.State) error {
	if !r.known(area) {
		return fmt.Errorf("unknown area %q", area)
	}
	d := r.data(st, area == console.AreaToasts)
	if !d.Active[string(area)] {
		return nil
	}
	return r.execute(w, string(area), d)
}

func (r *Renderer) known(area console.Area) bool {
	return r.tmpl.Lookup(string(area)) != nil
}

func (r *Renderer) execute(w io.Writer, name string, d viewData) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, d); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
