package charts

import (
	"errors"
	"sync"

	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
)

// ErrMissingSurface reports a binding whose display surface is not part
// of the dashboard page. The binding is skipped; the rest of the
// dashboard initializes normally.
var ErrMissingSurface = errors.New("display surface not found")

// Update describes one chart mutation produced by Apply, in the shape
// the live feed pushes to connected pages.
type Update struct {
	Surface string     `json:"surface"`
	Labels  []string   `json:"labels"`
	Values  []*float64 `json:"values"`
	YMin    *float64   `json:"y_min,omitempty"`
	YMax    *float64   `json:"y_max,omitempty"`
	Stale   bool       `json:"stale"`
}

// chartInstance is one live chart: its binding plus the data and axis
// bounds from the most recent apply.
type chartInstance struct {
	binding   Binding
	labels    []string
	values    []*float64
	yMin      float64
	yMax      float64
	hasBounds bool
	redraws   int
	snippet   ChartSnippet
}

// Manager owns the chart instances of one dashboard. Charts are created
// once at construction and thereafter only mutated: each Apply replaces
// their data wholesale, recomputes dynamic bounds and triggers exactly
// one redraw per chart.
type Manager struct {
	mu     sync.Mutex
	name   string
	log    *logger.Logger
	charts map[string]*chartInstance
	order  []string
	stale  bool
}

// NewManager initializes one chart per binding whose surface exists on
// the page. Bindings referencing absent surfaces are logged and
// skipped.
func NewManager(name string, bindings []Binding, surfaces Surfaces, log *logger.Logger) *Manager {
	m := &Manager{
		name:   name,
		log:    log,
		charts: make(map[string]*chartInstance, len(bindings)),
	}
	for _, b := range bindings {
		if !surfaces.Has(b.Surface) {
			log.Error("skipping chart binding", ErrMissingSurface, map[string]interface{}{
				"dashboard": name,
				"series":    b.Series,
				"surface":   b.Surface,
			})
			continue
		}
		c := &chartInstance{binding: b}
		if b.Policy == AxisFixed {
			c.yMin, c.yMax = b.FixedMin, b.FixedMax
			c.hasBounds = true
		}
		m.charts[b.Series] = c
		m.order = append(m.order, b.Series)
	}
	return m
}

// Apply replaces every initialized chart's labels and values with the
// matching series from the payload. Series without an initialized chart
// are ignored; charts without a matching series keep their prior data.
// Dynamic axis bounds are recomputed from the new values; an all-absent
// series leaves the prior bounds in place. Returns one Update per
// mutated chart.
func (m *Manager) Apply(p models.RefreshPayload) []Update {
	m.mu.Lock()
	defer m.mu.Unlock()

	updates := make([]Update, 0, len(m.order))
	for _, name := range m.order {
		c := m.charts[name]
		values, ok := p.Series[name]
		if !ok {
			continue
		}
		if len(values) != len(p.Labels) {
			m.log.Warn("misaligned series dropped", map[string]interface{}{
				"dashboard": m.name,
				"series":    name,
				"labels":    len(p.Labels),
				"values":    len(values),
			})
			continue
		}

		c.labels = p.Labels
		c.values = values
		if c.binding.Policy == AxisDynamic {
			if min, max, ok := axisBounds(values, c.binding); ok {
				c.yMin, c.yMax = min, max
				c.hasBounds = true
			}
		}
		m.redraw(c)

		u := Update{
			Surface: c.binding.Surface,
			Labels:  c.labels,
			Values:  c.values,
			Stale:   m.stale,
		}
		if c.hasBounds {
			min, max := c.yMin, c.yMax
			u.YMin, u.YMax = &min, &max
		}
		updates = append(updates, u)
	}
	return updates
}

// redraw regenerates the chart's embeddable snippet. Called once per
// Apply per chart.
func (m *Manager) redraw(c *chartInstance) {
	snippet, err := buildSnippet(c)
	if err != nil {
		m.log.Error("chart redraw failed", err, map[string]interface{}{
			"dashboard": m.name,
			"series":    c.binding.Series,
		})
		return
	}
	c.snippet = snippet
	c.redraws++
}

// SetStale marks the dashboard's rendered output as stale. The flag
// rides on every subsequent Update so open pages can surface it.
func (m *Manager) SetStale(stale bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = stale
}

// Stale reports whether the dashboard currently shows stale data.
func (m *Manager) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

// Name returns the dashboard name the manager was built for.
func (m *Manager) Name() string {
	return m.name
}

// Snippets returns the current embeddable fragment for every
// initialized chart, in binding order. Charts that never received data
// render as empty surfaces the live feed fills in later.
func (m *Manager) Snippets() []ChartSnippet {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ChartSnippet, 0, len(m.order))
	for _, name := range m.order {
		c := m.charts[name]
		if c.snippet.ID == "" {
			m.redraw(c)
		}
		out = append(out, c.snippet)
	}
	return out
}
