package reports

import (
	"strings"
	"testing"

	"github.com/kavete/health-monitor/internal/charts"
)

func testSnippets() []charts.ChartSnippet {
	return []charts.ChartSnippet{
		{
			ID:     "chart-heart-rate",
			Title:  "Heart Rate",
			Div:    `<div id="chart-heart-rate"></div>`,
			Script: `<script>window._wardCharts['chart-heart-rate']={};</script>`,
		},
		{
			ID:     "chart-oxygen-saturation",
			Title:  "Oxygen Saturation",
			Div:    `<div id="chart-oxygen-saturation"></div>`,
			Script: `<script>window._wardCharts['chart-oxygen-saturation']={};</script>`,
		},
	}
}

func TestRenderDashboardEmbedsCharts(t *testing.T) {
	b := NewPageBuilder()

	html, err := b.RenderDashboard(PageData{
		Title:     "Patient 2",
		Dashboard: "patient-vitals",
		Version:   "1.2.3",
	}, "", testSnippets())
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}

	for _, want := range []string{
		"<title>Patient 2</title>",
		`id="chart-heart-rate"`,
		`id="chart-oxygen-saturation"`,
		"window._wardCharts['chart-heart-rate']",
		"<h3>Heart Rate</h3>",
		"1.2.3",
		"echarts.min.js",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderDashboardRendersMarkdownNotes(t *testing.T) {
	b := NewPageBuilder()

	notes := "## Ward Census\n\n- **General**: 4 patients\n- [ICU](/dashboards/icu)"
	html, err := b.RenderDashboard(PageData{
		Title:     "Overview",
		Dashboard: "ward-overview",
	}, notes, nil)
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}

	if !strings.Contains(html, "Ward Census</h2>") {
		t.Error("heading not rendered")
	}
	if !strings.Contains(html, "<strong>General</strong>") {
		t.Error("bold text not rendered")
	}
	if !strings.Contains(html, `<a href="/dashboards/icu">ICU</a>`) {
		t.Error("link not rendered")
	}
}

func TestRenderDashboardWiresLiveFeed(t *testing.T) {
	b := NewPageBuilder()

	html, err := b.RenderDashboard(PageData{
		Title:     "Overview",
		Dashboard: "ward-overview",
	}, "", nil)
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}

	if !strings.Contains(html, "live?dashboard=ward-overview") {
		t.Error("live feed url missing dashboard name")
	}
	if !strings.Contains(html, "setOption(opt)") {
		t.Error("live client must patch charts in place")
	}
}

func TestRenderDashboardStaleBanner(t *testing.T) {
	b := NewPageBuilder()

	fresh, err := b.RenderDashboard(PageData{Title: "t", Dashboard: "d"}, "", nil)
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	if !strings.Contains(fresh, "display: none") {
		t.Error("stale banner should be hidden when data is fresh")
	}

	stale, err := b.RenderDashboard(PageData{Title: "t", Dashboard: "d", Stale: true}, "", nil)
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	if !strings.Contains(stale, "display: block") {
		t.Error("stale banner should be shown when data is stale")
	}
}

func TestRenderDashboardBackLink(t *testing.T) {
	b := NewPageBuilder()

	html, err := b.RenderDashboard(PageData{Title: "t", Dashboard: "d", BackLink: true}, "", nil)
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	if !strings.Contains(html, `href="/"`) {
		t.Error("back link missing")
	}
}
