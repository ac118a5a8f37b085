package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/pipeline"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/beambeam.defaults.json"

// Config holds the bunch train, beam and run parameters of a beam-beam
// configuration. Pointer fields are optional; the Get* methods supply the
// defaults for fields left out of a file.
type Config struct {
	// Bunch train
	IPNames             []string `json:"ip_names,omitempty"`
	HarmonicNumber      *float64 `json:"harmonic_number,omitempty"`
	BunchSpacingBuckets *int     `json:"bunch_spacing_buckets,omitempty"`
	NumLongRangePerSide []int    `json:"num_long_range_per_side,omitempty"`
	NumSlicesHeadOn     *int     `json:"num_slices_head_on,omitempty"`
	SigmaZ              *float64 `json:"sigma_z,omitempty"` // m

	// Beam
	NumParticles *float64 `json:"num_particles,omitempty"`
	NemittX      *float64 `json:"nemitt_x,omitempty"`
	NemittY      *float64 `json:"nemitt_y,omitempty"`

	// Modes
	CrabStrongBeam  *bool `json:"crab_strong_beam,omitempty"`
	UseAntisymmetry *bool `json:"use_antisymmetry,omitempty"`
	Coupling        *bool `json:"coupling,omitempty"`

	// Outputs
	DatabasePath *string `json:"database_path,omitempty"`
	PlotDir      *string `json:"plot_dir,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// Default returns a Config with every field set to its default value.
func Default() *Config {
	empty := &Config{}
	return &Config{
		IPNames:             empty.GetIPNames(),
		HarmonicNumber:      ptrFloat64(empty.GetHarmonicNumber()),
		BunchSpacingBuckets: ptrInt(empty.GetBunchSpacingBuckets()),
		NumLongRangePerSide: empty.GetNumLongRangePerSide(),
		NumSlicesHeadOn:     ptrInt(empty.GetNumSlicesHeadOn()),
		SigmaZ:              ptrFloat64(empty.GetSigmaZ()),
		NumParticles:        ptrFloat64(empty.GetNumParticles()),
		NemittX:             ptrFloat64(empty.GetNemittX()),
		NemittY:             ptrFloat64(empty.GetNemittY()),
		CrabStrongBeam:      ptrBool(false),
		UseAntisymmetry:     ptrBool(false),
		Coupling:            ptrBool(false),
		DatabasePath:        ptrString(empty.GetDatabasePath()),
		PlotDir:             ptrString(empty.GetPlotDir()),
	}
}

// Load reads a Config from a JSON file. Fields omitted from the file keep
// their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefault loads DefaultConfigPath from the current directory or one
// of its parents. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefault() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Cross-field checks use the
// effective values.
func (c *Config) Validate() error {
	if c.HarmonicNumber != nil && !(*c.HarmonicNumber > 0) {
		return fmt.Errorf("%w: harmonic_number must be positive, got %g", bberr.ErrInvalidParams, *c.HarmonicNumber)
	}
	if c.BunchSpacingBuckets != nil && *c.BunchSpacingBuckets < 1 {
		return fmt.Errorf("%w: bunch_spacing_buckets must be positive, got %d", bberr.ErrInvalidParams, *c.BunchSpacingBuckets)
	}
	if c.NumSlicesHeadOn != nil && (*c.NumSlicesHeadOn < 1 || *c.NumSlicesHeadOn%2 == 0) {
		return fmt.Errorf("%w: num_slices_head_on must be a positive odd number, got %d", bberr.ErrInvalidSlices, *c.NumSlicesHeadOn)
	}
	if c.SigmaZ != nil && !(*c.SigmaZ > 0) {
		return fmt.Errorf("%w: sigma_z must be positive, got %g", bberr.ErrInvalidParams, *c.SigmaZ)
	}
	if c.NumParticles != nil && !(*c.NumParticles > 0) {
		return fmt.Errorf("%w: num_particles must be positive, got %g", bberr.ErrInvalidParams, *c.NumParticles)
	}
	for name, v := range map[string]*float64{"nemitt_x": c.NemittX, "nemitt_y": c.NemittY} {
		if v != nil && !(*v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", bberr.ErrInvalidParams, name, *v)
		}
	}
	for _, n := range c.NumLongRangePerSide {
		if n < 0 {
			return fmt.Errorf("%w: num_long_range_per_side must not be negative, got %d", bberr.ErrInvalidParams, n)
		}
	}
	switch {
	case len(c.IPNames) > 0 && len(c.NumLongRangePerSide) == 0:
		return fmt.Errorf("%w: ip_names is set, so num_long_range_per_side must list one count per IP", bberr.ErrInvalidParams)
	case len(c.IPNames) == 0 && len(c.NumLongRangePerSide) > 0:
		return fmt.Errorf("%w: num_long_range_per_side is set, so ip_names must name its IPs", bberr.ErrInvalidParams)
	}
	if ips, lr := c.GetIPNames(), c.GetNumLongRangePerSide(); len(ips) != len(lr) {
		return fmt.Errorf("%w: %d IP names but %d long-range counts", bberr.ErrInvalidParams, len(ips), len(lr))
	}
	return nil
}

// GetIPNames returns the IP names or the four LHC experiments.
func (c *Config) GetIPNames() []string {
	if len(c.IPNames) == 0 {
		return []string{"ip1", "ip2", "ip5", "ip8"}
	}
	return c.IPNames
}

// GetHarmonicNumber returns the harmonic_number value or the default.
func (c *Config) GetHarmonicNumber() float64 {
	if c.HarmonicNumber == nil {
		return 35640
	}
	return *c.HarmonicNumber
}

// GetBunchSpacingBuckets returns the bunch_spacing_buckets value or the default.
func (c *Config) GetBunchSpacingBuckets() int {
	if c.BunchSpacingBuckets == nil {
		return 10 // 25 ns
	}
	return *c.BunchSpacingBuckets
}

// GetNumLongRangePerSide returns the long-range counts, one per IP.
func (c *Config) GetNumLongRangePerSide() []int {
	if len(c.NumLongRangePerSide) == 0 {
		return []int{25, 20, 25, 20}
	}
	return c.NumLongRangePerSide
}

// GetNumSlicesHeadOn returns the num_slices_head_on value or the default.
func (c *Config) GetNumSlicesHeadOn() int {
	if c.NumSlicesHeadOn == nil {
		return 11
	}
	return *c.NumSlicesHeadOn
}

// GetSigmaZ returns the sigma_z value or the default.
func (c *Config) GetSigmaZ() float64 {
	if c.SigmaZ == nil {
		return 0.0761
	}
	return *c.SigmaZ
}

// GetNumParticles returns the num_particles value or the default.
func (c *Config) GetNumParticles() float64 {
	if c.NumParticles == nil {
		return 1.15e11
	}
	return *c.NumParticles
}

// GetNemittX returns the nemitt_x value or the default.
func (c *Config) GetNemittX() float64 {
	if c.NemittX == nil {
		return 2.5e-6
	}
	return *c.NemittX
}

// GetNemittY returns the nemitt_y value or the default.
func (c *Config) GetNemittY() float64 {
	if c.NemittY == nil {
		return 2.5e-6
	}
	return *c.NemittY
}

func (c *Config) GetCrabStrongBeam() bool  { return c.CrabStrongBeam != nil && *c.CrabStrongBeam }
func (c *Config) GetUseAntisymmetry() bool { return c.UseAntisymmetry != nil && *c.UseAntisymmetry }
func (c *Config) GetCoupling() bool        { return c.Coupling != nil && *c.Coupling }

// GetDatabasePath returns the database_path value or the default.
func (c *Config) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "beambeam.db"
	}
	return *c.DatabasePath
}

// GetPlotDir returns the plot_dir value or the default.
func (c *Config) GetPlotDir() string {
	if c.PlotDir == nil || *c.PlotDir == "" {
		return "plots"
	}
	return *c.PlotDir
}

// InstallParams returns the parameters for pipeline.Install.
func (c *Config) InstallParams() pipeline.InstallParams {
	return pipeline.InstallParams{
		IPNames:             c.GetIPNames(),
		HarmonicNumber:      c.GetHarmonicNumber(),
		BunchSpacingBuckets: c.GetBunchSpacingBuckets(),
		NumLongRangePerSide: c.GetNumLongRangePerSide(),
		NumSlicesHeadOn:     c.GetNumSlicesHeadOn(),
		SigmaZ:              c.GetSigmaZ(),
	}
}

// ConfigureParams returns the parameters for pipeline.Configure.
func (c *Config) ConfigureParams() pipeline.ConfigureParams {
	return pipeline.ConfigureParams{
		IPNames:         c.GetIPNames(),
		NumParticles:    c.GetNumParticles(),
		NemittX:         c.GetNemittX(),
		NemittY:         c.GetNemittY(),
		CrabStrongBeam:  c.GetCrabStrongBeam(),
		UseAntisymmetry: c.GetUseAntisymmetry(),
		Coupling:        c.GetCoupling(),
	}
}
