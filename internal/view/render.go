// internal/view/render.go
//
// Central view engine: template-set lookup by key and buffered execution of
// a PageView.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to any io.Writer.
//   - RenderToString – return template.HTML (previews, tests).
//
// Lookup is by the site's template key through theme.Registry, which
// parses each set once and keeps it in an LRU.  A key with no layout
// returns theme.ErrUnknownTemplate and nothing is written.
//
// Execution goes to a buffer first, so a template error never leaves a
// half-written page on the wire and the caller can still answer 500.

package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/sitekit/internal/metrics"
	"github.com/yanizio/sitekit/internal/theme"
)

// Renderer executes page views against a theme registry.
type Renderer struct {
	themes *theme.Registry
	log    *zap.Logger
}

// NewRenderer returns a Renderer.  A nil logger means zap.L().
func NewRenderer(themes *theme.Registry, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.L()
	}
	return &Renderer{themes: themes, log: log}
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Render executes v with the set for templateKey and copies the result to w.
func (r *Renderer) Render(w io.Writer, templateKey string, v *PageView) error {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := r.execute(buf, templateKey, v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes and returns HTML.  It mirrors Render, but keeps
// the output in memory.
func (r *Renderer) RenderToString(templateKey string, v *PageView) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.execute(&buf, templateKey, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(buf *bytes.Buffer, templateKey string, v *PageView) error {
	th, err := r.themes.Lookup(templateKey)
	if err != nil {
		label := templateKey
		if errors.Is(err, theme.ErrUnknownTemplate) {
			label = "unknown"
		}
		metrics.PageRenderTotal.WithLabelValues(label, "lookup_error").Inc()
		return err
	}
	if err := th.Execute(buf, v); err != nil {
		metrics.PageRenderTotal.WithLabelValues(templateKey, "exec_error").Inc()
		r.log.Error("view: execute",
			zap.String("template", templateKey),
			zap.String("page", v.Key),
			zap.Error(err))
		return fmt.Errorf("view: execute %s: %w", templateKey, err)
	}
	metrics.PageRenderTotal.WithLabelValues(templateKey, "ok").Inc()
	return nil
}
