package report

import (
	"fmt"
	"os"

	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/security"
	"github.com/banshee-data/beambeam/internal/units"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// WritePNG writes one separation plot per beam into dir and returns the
// paths written. Separations are drawn in unit.
func WritePNG(dir, unit string, sums []resolve.Summary) ([]string, error) {
	if err := checkUnit(unit); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	beams, groups := byBeam(sums)
	paths := make([]string, 0, len(beams))
	for _, beam := range beams {
		path, err := security.OutputPath(dir, beam+"_separation", ".png")
		if err != nil {
			return paths, err
		}
		p, err := separationPlot(beam, unit, groups[beam])
		if err != nil {
			return paths, err
		}
		if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		monitoring.Logf("report: wrote %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}

func separationPlot(beam, unit string, rows []resolve.Summary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Beam %s - separation at the encounters", beam)
	p.X.Label.Text = "s - s_ip (m)"
	p.Y.Label.Text = fmt.Sprintf("Separation (%s)", unit)
	p.Add(plotter.NewGrid())

	sx := make(plotter.XYs, len(rows))
	sy := make(plotter.XYs, len(rows))
	for i, r := range rows {
		sx[i] = plotter.XY{X: offset(r), Y: units.ConvertLength(r.SeparationX, unit)}
		sy[i] = plotter.XY{X: offset(r), Y: units.ConvertLength(r.SeparationY, unit)}
	}

	for i, series := range []struct {
		name string
		xys  plotter.XYs
	}{{"x", sx}, {"y", sy}} {
		sc, err := plotter.NewScatter(series.xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add(series.name, sc)
	}
	return p, nil
}
