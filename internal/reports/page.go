package reports

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/kavete/health-monitor/internal/charts"
)

// PageBuilder assembles dashboard pages: a markdown notes block
// rendered with goldmark, followed by the dashboard's chart surfaces
// and the live update client.
type PageBuilder struct {
	markdown goldmark.Markdown
	tmpl     *template.Template
}

// NewPageBuilder creates a page builder.
func NewPageBuilder() *PageBuilder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithHardWraps(),
		),
	)

	return &PageBuilder{
		markdown: md,
		tmpl:     template.Must(template.New("dashboard").Parse(pageTemplate)),
	}
}

// ChartBlock is one chart surface on the rendered page.
type ChartBlock struct {
	Title  string
	Div    template.HTML
	Script template.HTML
}

// PageData feeds the dashboard page template.
type PageData struct {
	Title       string
	Dashboard   string
	Version     string
	Notes       template.HTML
	Stale       bool
	Charts      []ChartBlock
	LivePath    string
	BackLink    bool
}

// RenderDashboard renders one dashboard page. notes is markdown and may
// be empty; snippets come from the dashboard's chart manager.
func (b *PageBuilder) RenderDashboard(data PageData, notes string, snippets []charts.ChartSnippet) (string, error) {
	if notes != "" {
		var buf bytes.Buffer
		if err := b.markdown.Convert([]byte(notes), &buf); err != nil {
			return "", fmt.Errorf("failed to render dashboard notes: %w", err)
		}
		data.Notes = template.HTML(buf.String())
	}

	data.Charts = make([]ChartBlock, 0, len(snippets))
	for _, s := range snippets {
		data.Charts = append(data.Charts, ChartBlock{
			Title:  s.Title,
			Div:    template.HTML(s.Div),
			Script: template.HTML(s.Script),
		})
	}
	if data.LivePath == "" {
		data.LivePath = "/live"
	}

	var out bytes.Buffer
	if err := b.tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render dashboard page: %w", err)
	}
	return out.String(), nil
}
