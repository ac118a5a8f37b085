package resolve

// counterRotatedCrab flips x and py.
func counterRotatedCrab(c Crab) Crab {
	return Crab{X: -c.X, Px: c.Px, Y: c.Y, Py: -c.Py}
}

// CounterRotating returns the table as needed by a line that describes the
// beam in the opposite direction of motion: positions, x separations and
// the y slope difference change sign, beam matrices become S Sigma S with
// S = diag(-1, 1, 1, -1), and the crossing angle and plane are recomputed.
//
// Lab placements and s positions are not carried over. Applied twice, the
// transform restores every signed field.
func CounterRotating(bt *BeamTable) *BeamTable {
	out := newBeamTable(bt.beam, bt.Len())
	out.Crabbing = bt.Crabbing
	for _, r := range bt.Rows() {
		c := &Resolved{
			Encounter:             r.Encounter,
			SelfNumParticles:      r.SelfNumParticles,
			SelfSigma:             r.SelfSigma.CounterRotated(),
			SelfCrab:              counterRotatedCrab(r.SelfCrab),
			OtherSigma:            r.OtherSigma.CounterRotated(),
			OtherNumParticles:     r.OtherNumParticles,
			OtherParticleCharge:   r.OtherParticleCharge,
			OtherRelativisticBeta: r.OtherRelativisticBeta,
			OtherCrab:             counterRotatedCrab(r.OtherCrab),
			SeparationX:           -r.SeparationX,
			SeparationY:           r.SeparationY,
			SeparationXNoCrab:     -r.SeparationXNoCrab,
			SeparationYNoCrab:     r.SeparationYNoCrab,
			DPx:                   r.DPx,
			DPy:                   -r.DPy,
		}
		c.AtPosition = -r.AtPosition
		c.Alpha, c.Phi = FindAlphaAndPhi(c.DPx, c.DPy)
		out.add(c)
	}
	return out
}
