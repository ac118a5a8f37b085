package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/units"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an interactive page with the separations, in unit, and
// crossing angles of every beam.
func WriteHTML(w io.Writer, title, unit string, sums []resolve.Summary) error {
	if err := checkUnit(unit); err != nil {
		return err
	}
	page := components.NewPage()
	page.PageTitle = title

	beams, groups := byBeam(sums)
	for _, beam := range beams {
		rows := groups[beam]
		page.AddCharts(separationChart(beam, unit, rows), crossingChart(beam, rows))
	}
	page.AddCharts(countChart(beams, groups))
	return page.Render(w)
}

func separationChart(beam, unit string, rows []resolve.Summary) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Separation " + beam, Subtitle: fmt.Sprintf("encounters=%d", len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "s - s_ip (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: unit, NameLocation: "middle", NameGap: 40}),
	)
	x := make([]opts.ScatterData, 0, len(rows))
	y := make([]opts.ScatterData, 0, len(rows))
	for _, r := range rows {
		x = append(x, opts.ScatterData{Name: r.ElementName, Value: []interface{}{offset(r), units.ConvertLength(r.SeparationX, unit)}})
		y = append(y, opts.ScatterData{Name: r.ElementName, Value: []interface{}{offset(r), units.ConvertLength(r.SeparationY, unit)}})
	}
	sc.AddSeries("x", x, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	sc.AddSeries("y", y, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return sc
}

func crossingChart(beam string, rows []resolve.Summary) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Crossing angle " + beam}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "s - s_ip (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "phi (urad)", NameLocation: "middle", NameGap: 40}),
	)
	data := make([]opts.ScatterData, 0, len(rows))
	for _, r := range rows {
		data = append(data, opts.ScatterData{Name: r.ElementName, Value: []interface{}{offset(r), r.Phi * 1e6}})
	}
	sc.AddSeries("phi", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return sc
}

func countChart(beams []string, groups map[string][]resolve.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Encounters per beam"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(beams)
	for _, kind := range []encounter.Kind{encounter.KindHeadOn, encounter.KindLongRange} {
		data := make([]opts.BarData, 0, len(beams))
		for _, b := range beams {
			n := 0
			for _, r := range groups[b] {
				if r.Kind == kind {
					n++
				}
			}
			data = append(data, opts.BarData{Value: n})
		}
		bar.AddSeries(string(kind), data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	}
	return bar
}
