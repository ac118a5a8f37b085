package lens

import "github.com/banshee-data/beambeam/internal/track"

// ConfigureOrbitDependent walks a copy of the closed-orbit particle co through
// line and records, at every lens, the reference shifts that make the lens
// kick vanish on the closed orbit. It must run again whenever the closed
// orbit or the lens parameters change; running it twice gives the same state.
func ConfigureOrbitDependent(line track.Line, co track.Particle) {
	p := co
	for _, name := range line.Names() {
		el, ok := line.Element(name)
		if !ok {
			continue
		}
		l, ok := el.(*Lens)
		if !ok {
			el.Track(&p)
			continue
		}

		switch l.Kind {
		case Kind2D:
			// The separation is stored relative to the closed orbit; the
			// backend wants the strong beam position.
			l.Shift2D = Shift2D{
				MeanX: l.Params2D.ShiftX + p.X,
				MeanY: l.Params2D.ShiftY + p.Y,
			}
			px0, py0 := p.Px, p.Py
			l.Track(&p)
			l.Shift2D.DPx = p.Px - px0
			l.Shift2D.DPy = p.Py - py0
			p.Px -= l.Shift2D.DPx
			p.Py -= l.Shift2D.DPy

		case Kind3D:
			s := Shift3D{
				RefX: p.X, RefPx: p.Px,
				RefY: p.Y, RefPy: p.Py,
				RefZeta: p.Zeta, RefPzeta: p.Delta,
			}
			l.Shift3D = s
			l.Track(&p)
			l.Shift3D.PostSubtractX = p.X - s.RefX
			l.Shift3D.PostSubtractPx = p.Px - s.RefPx
			l.Shift3D.PostSubtractY = p.Y - s.RefY
			l.Shift3D.PostSubtractPy = p.Py - s.RefPy
			l.Shift3D.PostSubtractZeta = p.Zeta - s.RefZeta
			l.Shift3D.PostSubtractPzeta = p.Delta - s.RefPzeta
			p = track.Particle{X: s.RefX, Px: s.RefPx, Y: s.RefY, Py: s.RefPy, Zeta: s.RefZeta, Delta: s.RefPzeta}
		}
	}
}
