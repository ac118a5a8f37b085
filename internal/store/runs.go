package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/google/uuid"
)

// Run describes one stored configuration.
type Run struct {
	ID         string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Version    string    `json:"version"`
	ConfigJSON string    `json:"config_json"`
	// Beams is a comma separated list of the beams stored with the run.
	Beams string `json:"beams"`
	Notes string `json:"notes,omitempty"`
}

// SaveRun stores run with its encounter rows and resolved summaries in one
// transaction. A new id is assigned when run.ID is empty; CreatedAt is
// always taken from the store clock.
func (s *Store) SaveRun(run Run, rows []encounter.KeepRow, sums []resolve.Summary) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = s.clock.Now()

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, created_at, version, config_json, beams, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Version, run.ConfigJSON, run.Beams, run.Notes,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	encStmt, err := tx.Prepare(`INSERT INTO encounters (
			run_id, beam, other_beam, ip_name, element_name, other_element_name, label,
			self_particle_charge, self_relativistic_beta, self_frac_of_bunch, identifier, s_crab
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer encStmt.Close()
	for _, r := range rows {
		if _, err := encStmt.Exec(run.ID, r.Beam, r.OtherBeam, r.IPName, r.ElementName, r.OtherElementName, r.Label,
			r.SelfParticleCharge, r.SelfRelativisticBeta, r.SelfFracOfBunch, r.Identifier, r.SCrab); err != nil {
			return "", fmt.Errorf("insert encounter %s: %w", r.ElementName, err)
		}
	}

	sumStmt, err := tx.Prepare(`INSERT INTO summaries (
			run_id, beam, element_name, ip_name, label, identifier, s, s_ip,
			separation_x, separation_y, dpx, dpy, phi, alpha, other_num_particles
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer sumStmt.Close()
	for _, r := range sums {
		if _, err := sumStmt.Exec(run.ID, r.Beam, r.ElementName, r.IPName, string(r.Kind), r.Identifier, r.S, r.SIP,
			r.SeparationX, r.SeparationY, r.DPx, r.DPy, r.Phi, r.Alpha, r.OtherNumParticles); err != nil {
			return "", fmt.Errorf("insert summary %s/%s: %w", r.Beam, r.ElementName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.Query(`SELECT run_id, created_at, version, config_json, beams, notes
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run.
func (s *Store) GetRun(id string) (Run, error) {
	r, err := scanRun(s.QueryRow(`SELECT run_id, created_at, version, config_json, beams, notes
		FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		created int64
	)
	if err := sc.Scan(&r.ID, &created, &r.Version, &r.ConfigJSON, &r.Beams, &r.Notes); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

// LoadRows returns the encounter rows of one beam of a run in element name
// order.
func (s *Store) LoadRows(id, beam string) ([]encounter.KeepRow, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}
	rows, err := s.Query(`SELECT beam, other_beam, ip_name, element_name, other_element_name, label,
			self_particle_charge, self_relativistic_beta, self_frac_of_bunch, identifier, s_crab
		FROM encounters WHERE run_id = ? AND beam = ? ORDER BY element_name`, id, beam)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []encounter.KeepRow
	for rows.Next() {
		var r encounter.KeepRow
		if err := rows.Scan(&r.Beam, &r.OtherBeam, &r.IPName, &r.ElementName, &r.OtherElementName, &r.Label,
			&r.SelfParticleCharge, &r.SelfRelativisticBeta, &r.SelfFracOfBunch, &r.Identifier, &r.SCrab); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadSummaries returns the resolved summaries of a run, ordered by beam and
// element name. An empty beam selects every beam.
func (s *Store) LoadSummaries(id, beam string) ([]resolve.Summary, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}
	rows, err := s.Query(`SELECT beam, element_name, ip_name, label, identifier, s, s_ip,
			separation_x, separation_y, dpx, dpy, phi, alpha, other_num_particles
		FROM summaries WHERE run_id = ? AND (? = '' OR beam = ?) ORDER BY beam, element_name`, id, beam, beam)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resolve.Summary
	for rows.Next() {
		var (
			r     resolve.Summary
			label string
		)
		if err := rows.Scan(&r.Beam, &r.ElementName, &r.IPName, &label, &r.Identifier, &r.S, &r.SIP,
			&r.SeparationX, &r.SeparationY, &r.DPx, &r.DPy, &r.Phi, &r.Alpha, &r.OtherNumParticles); err != nil {
			return nil, err
		}
		r.Kind = encounter.Kind(label)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and, through the foreign keys, its rows.
func (s *Store) DeleteRun(id string) error {
	res, err := s.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
