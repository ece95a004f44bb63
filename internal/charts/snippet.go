package charts

import (
	"encoding/json"
	"fmt"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartSnippet is an embeddable ECharts fragment for one chart.
// Div holds the root <div id="..."></div>, Script the <script> block
// that initializes or patches the chart inside it.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
}

// buildSnippet renders the chart's current state as an ECharts line
// option and wraps it in a div + init script. The init script registers
// the chart instance under its surface id so the live update feed can
// patch it in place with setOption instead of recreating it.
func buildSnippet(c *chartInstance) (ChartSnippet, error) {
	b := c.binding

	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		echarts.WithGridOpts(opts.Grid{
			Left:         "8%",
			Right:        "4%",
			Bottom:       "10%",
			ContainLabel: opts.Bool(true),
		}),
		echarts.WithYAxisOpts(yAxisOpts(c)),
	)

	data := make([]opts.LineData, len(c.values))
	for i, v := range c.values {
		if v == nil {
			data[i] = opts.LineData{Value: nil}
		} else {
			data[i] = opts.LineData{Value: *v}
		}
	}

	line.SetXAxis(c.labels).
		AddSeries(b.Title, data).
		SetSeriesOptions(echarts.WithLineChartOpts(opts.LineChart{
			Smooth:       opts.Bool(true),
			ConnectNulls: opts.Bool(false),
		}))
	line.Validate()

	optJSON, err := json.Marshal(line.JSON())
	if err != nil {
		return ChartSnippet{}, err
	}

	div := fmt.Sprintf("<div id=%q style=\"width:100%%;height:320px;\"></div>", b.Surface)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);c.setOption(%s);window._wardCharts=window._wardCharts||{};window._wardCharts['%s']=c;window.addEventListener('resize',function(){c.resize();});})();</script>`,
		b.Surface, string(optJSON), b.Surface)

	return ChartSnippet{ID: b.Surface, Title: b.Title, Div: div, Script: script}, nil
}

func yAxisOpts(c *chartInstance) opts.YAxis {
	axis := opts.YAxis{Type: "value"}
	if c.binding.Unit != "" {
		axis.Name = c.binding.Unit
	}
	if c.hasBounds {
		axis.Min = c.yMin
		axis.Max = c.yMax
	}
	return axis
}
