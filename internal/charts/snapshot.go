package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SnapshotPNG renders the named chart's current state as a static PNG,
// honoring the same axis bounds the live chart shows. Absent readings
// are left out of the plotted line.
func (m *Manager) SnapshotPNG(series string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.charts[series]
	if !ok {
		return nil, fmt.Errorf("no chart for series %q on dashboard %q", series, m.name)
	}

	var xValues, yValues []float64
	for i, v := range c.values {
		if v == nil {
			continue
		}
		xValues = append(xValues, float64(i))
		yValues = append(yValues, *v)
	}
	if len(xValues) == 0 {
		return nil, fmt.Errorf("no data for series %q on dashboard %q", series, m.name)
	}

	// Label every few points to keep the axis readable.
	step := len(c.labels)/6 + 1
	var ticks []chart.Tick
	for i := 0; i < len(c.labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c.labels[i]})
	}

	yAxis := chart.YAxis{
		Name: c.binding.Unit,
		NameStyle: chart.Style{
			FontSize: 12,
		},
	}
	if c.hasBounds {
		yAxis.Range = &chart.ContinuousRange{Min: c.yMin, Max: c.yMax}
	}

	graph := chart.Chart{
		Title: c.binding.Title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   70,
				Right:  20,
				Bottom: 60,
			},
		},
		Height: 350,
		Width:  700,
		XAxis: chart.XAxis{
			Ticks: ticks,
			Style: chart.Style{
				FontSize: 9,
			},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: c.binding.Title,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 51, G: 102, B: 204, A: 255},
					StrokeWidth: 2,
					DotColor:    drawing.Color{R: 51, G: 102, B: 204, A: 255},
					DotWidth:    3,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render snapshot for %q: %w", series, err)
	}
	return buf.Bytes(), nil
}
