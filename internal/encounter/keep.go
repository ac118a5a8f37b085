package encounter

// KeepColumns are the columns persisted for downstream use, in order.
var KeepColumns = []string{
	"beam", "other_beam", "ip_name", "elementName", "other_elementName", "label",
	"self_particle_charge", "self_relativistic_beta", "self_frac_of_bunch",
	"identifier", "s_crab",
}

// KeepRow is an encounter trimmed to KeepColumns.
type KeepRow struct {
	Beam                 string  `json:"beam"`
	OtherBeam            string  `json:"other_beam"`
	IPName               string  `json:"ip_name"`
	ElementName          string  `json:"elementName"`
	OtherElementName     string  `json:"other_elementName"`
	Label                string  `json:"label"`
	SelfParticleCharge   float64 `json:"self_particle_charge"`
	SelfRelativisticBeta float64 `json:"self_relativistic_beta"`
	SelfFracOfBunch      float64 `json:"self_frac_of_bunch"`
	Identifier           int     `json:"identifier"`
	SCrab                float64 `json:"s_crab"`
}

// Keep trims one encounter.
func (e *Encounter) Keep() KeepRow {
	return KeepRow{
		Beam:                 e.Beam,
		OtherBeam:            e.OtherBeam,
		IPName:               e.IPName,
		ElementName:          e.ElementName,
		OtherElementName:     e.OtherElementName,
		Label:                string(e.Kind),
		SelfParticleCharge:   e.SelfParticleCharge,
		SelfRelativisticBeta: e.SelfRelativisticBeta,
		SelfFracOfBunch:      e.SelfFracOfBunch,
		Identifier:           e.Identifier,
		SCrab:                e.SCrab,
	}
}

// Keep trims the whole table, sorted by element name.
func (t *Table) Keep() []KeepRow {
	out := make([]KeepRow, 0, t.Len())
	for _, e := range t.Rows() {
		out = append(out, e.Keep())
	}
	return out
}

// FromKeep rebuilds a table from persisted rows. AtPosition is not part of
// the persisted columns and is left at zero.
func FromKeep(rows []KeepRow) (*Table, error) {
	out := make([]*Encounter, 0, len(rows))
	for _, r := range rows {
		kind, err := ParseKind(r.Label)
		if err != nil {
			return nil, err
		}
		out = append(out, &Encounter{
			Beam:                 r.Beam,
			OtherBeam:            r.OtherBeam,
			IPName:               r.IPName,
			Kind:                 kind,
			Identifier:           r.Identifier,
			ElementName:          r.ElementName,
			OtherElementName:     r.OtherElementName,
			SCrab:                r.SCrab,
			SelfParticleCharge:   r.SelfParticleCharge,
			SelfRelativisticBeta: r.SelfRelativisticBeta,
			SelfFracOfBunch:      r.SelfFracOfBunch,
		})
	}
	return NewTable(out)
}
