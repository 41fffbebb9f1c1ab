// Package report renders an HTML inspection chart of smoothed layers, so the
// effect of a run can be eyeballed before committing a print to it.
package report

import "fmt"
import "os"

import "github.com/go-echarts/go-echarts/v2/charts"
import "github.com/go-echarts/go-echarts/v2/components"
import "github.com/go-echarts/go-echarts/v2/opts"

import "gonum.org/v1/gonum/spatial/r2"

// A LayerTrace pairs a layer's original loop with its smoothed loop.
type LayerTrace struct {
	Index    int
	Original []r2.Vec
	Smoothed []r2.Vec
}

// Write renders one scatter chart per trace onto a single HTML page.
func Write(path string, traces []LayerTrace) error {
	page := components.NewPage()

	for _, tr := range traces {
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Vase smoothing report", Width: "700px", Height: "700px"}),
			charts.WithTitleOpts(opts.Title{
				Title:    fmt.Sprintf("Layer %d", tr.Index+1),
				Subtitle: fmt.Sprintf("%d points", len(tr.Smoothed)),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		)
		scatter.AddSeries("original", scatterData(tr.Original),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
		scatter.AddSeries("smoothed", scatterData(tr.Smoothed),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
		page.AddCharts(scatter)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

func scatterData(points []r2.Vec) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(points))
	for _, p := range points {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}
	return data
}
