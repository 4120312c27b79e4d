// Package view renders invoice summaries to HTML.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/services"
)

//go:embed templates/*.html
var embedded embed.FS

// InvoiceTemplate is the template file name looked up in the override
// directory before falling back to the embedded copy.
const InvoiceTemplate = "invoice.html"

// Renderer executes the invoice template. Parsed templates are cached unless
// Dev is set, in which case the override file is re-read on every render.
type Renderer struct {
	dir string
	dev bool

	mu    sync.RWMutex
	cache *template.Template
}

// New returns a renderer. dir may be empty to use only the embedded template.
func New(dir string, dev bool) *Renderer {
	r := &Renderer{dev: dev}
	if dir != "" {
		r.dir = filepath.Clean(dir)
	}
	return r
}

// Funcs returns the helpers available to invoice templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"lines": func(s string) []string { return strings.Split(s, "\n") },
		"quote": func(st models.Stage) bool { return st == models.StageQuote },
	}
}

func (r *Renderer) parse() (*template.Template, error) {
	t := template.New(InvoiceTemplate).Funcs(Funcs())
	if r.dir != "" {
		p := filepath.Join(r.dir, InvoiceTemplate)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return t.ParseFiles(p)
		}
	}
	return t.ParseFS(embedded, "templates/"+InvoiceTemplate)
}

func (r *Renderer) template() (*template.Template, error) {
	if !r.dev {
		r.mu.RLock()
		t := r.cache
		r.mu.RUnlock()
		if t != nil {
			return t, nil
		}
	}
	t, err := r.parse()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", InvoiceTemplate, models.ErrExternal, err)
	}
	if !r.dev {
		r.mu.Lock()
		r.cache = t
		r.mu.Unlock()
	}
	return t, nil
}

// Render writes the HTML document for sum. Nothing is written to w when
// execution fails.
func (r *Renderer) Render(w io.Writer, sum *services.Summary) error {
	t, err := r.template()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, sum); err != nil {
		return fmt.Errorf("render invoice %d: %w: %v", sum.ID, models.ErrExternal, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
