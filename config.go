package matchgrid

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/matchgrid/geom"
)

// GridConfig bundles the geometry parameters shared by HitHasher,
// HitNeighborFinder and MatchCounter. It can be loaded from YAML:
//
//	bounding_box:
//	  lower: [0, 0, 0]
//	  upper: [10, 10, 10]
//	xyz_bin_width: 2.0
//	euler_bin_width: 30
//	num_constraints: 3
//
// Per-axis widths (xyz_bin_widths, euler_bin_widths) take precedence over
// the uniform ones.
type GridConfig struct {
	BoundingBox    geom.BoundingBox `yaml:"bounding_box"`
	XYZBinWidth    float64          `yaml:"xyz_bin_width,omitempty"`
	XYZBinWidths   geom.Real3       `yaml:"xyz_bin_widths,omitempty"`
	EulerBinWidth  float64          `yaml:"euler_bin_width,omitempty"`
	EulerBinWidths geom.Real3       `yaml:"euler_bin_widths,omitempty"`
	NumConstraints int              `yaml:"num_constraints,omitempty"`
}

// LoadGridConfig decodes a YAML GridConfig from r and validates it.
func LoadGridConfig(r io.Reader) (GridConfig, error) {
	var cfg GridConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return GridConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return GridConfig{}, err
	}
	return cfg, nil
}

// xyz returns the effective per-axis translational widths.
func (c GridConfig) xyz() geom.Real3 {
	if c.XYZBinWidths == (geom.Real3{}) {
		return geom.Real3{c.XYZBinWidth, c.XYZBinWidth, c.XYZBinWidth}
	}
	return c.XYZBinWidths
}

// euler returns the effective per-axis Euler widths.
func (c GridConfig) euler() geom.Real3 {
	if c.EulerBinWidths == (geom.Real3{}) {
		return geom.Real3{c.EulerBinWidth, c.EulerBinWidth, c.EulerBinWidth}
	}
	return c.EulerBinWidths
}

// Validate reports whether the configuration describes a usable grid.
// NumConstraints may be zero for components that do not track constraints.
func (c GridConfig) Validate() error {
	if err := c.BoundingBox.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateWidths(c.xyz(), c.euler()); err != nil {
		return err
	}
	if c.NumConstraints < 0 {
		return fmt.Errorf("%w: num_constraints must not be negative, got %d", ErrInvalidConfig, c.NumConstraints)
	}
	return nil
}

func validateWidths(xyz, euler geom.Real3) error {
	for i, w := range xyz {
		if !(w > 0) {
			return fmt.Errorf("%w: xyz bin width %d must be positive, got %g", ErrInvalidConfig, i, w)
		}
	}
	for i, w := range euler {
		if !(w > 0) {
			return fmt.Errorf("%w: euler bin width %d must be positive, got %g", ErrInvalidConfig, i, w)
		}
	}
	return nil
}

// grid holds the two-phase geometry configuration shared by the indexes.
// Setters are only legal before Initialize.
type grid struct {
	component   string
	initialized bool
	box         geom.BoundingBox
	xyzWidths   geom.Real3
	eulerWidths geom.Real3
}

// SetBoundingBox sets the translational region hits must fall in.
func (g *grid) SetBoundingBox(bb geom.BoundingBox) {
	mustBeConfigurable(g.component, g.initialized)
	g.box = bb
}

// SetUniformXYZBinWidth sets the same bin width on x, y and z.
func (g *grid) SetUniformXYZBinWidth(width float64) {
	mustBeConfigurable(g.component, g.initialized)
	g.xyzWidths = geom.Real3{width, width, width}
}

// SetXYZBinWidths sets the bin width of each translational axis.
func (g *grid) SetXYZBinWidths(widths geom.Real3) {
	mustBeConfigurable(g.component, g.initialized)
	g.xyzWidths = widths
}

// SetUniformEulerBinWidth sets the same bin width, in degrees, on phi, psi
// and theta.
func (g *grid) SetUniformEulerBinWidth(degrees float64) {
	mustBeConfigurable(g.component, g.initialized)
	g.eulerWidths = geom.Real3{degrees, degrees, degrees}
}

// SetEulerBinWidths sets the bin width, in degrees, of phi, psi and theta.
func (g *grid) SetEulerBinWidths(degrees geom.Real3) {
	mustBeConfigurable(g.component, g.initialized)
	g.eulerWidths = degrees
}

// Initialized reports whether Initialize has been called.
func (g *grid) Initialized() bool {
	return g.initialized
}

// BoundingBox returns the configured bounding box.
func (g *grid) BoundingBox() geom.BoundingBox {
	return g.box
}

func (g *grid) configure(cfg GridConfig) {
	g.SetBoundingBox(cfg.BoundingBox)
	g.SetXYZBinWidths(cfg.xyz())
	g.SetEulerBinWidths(cfg.euler())
}

// begin validates the configuration ahead of Initialize. The component sets
// initialized itself once its binners are built. Initializing twice panics.
func (g *grid) begin() error {
	if g.initialized {
		panic("matchgrid: " + g.component + " initialized twice")
	}
	if err := g.box.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return validateWidths(g.xyzWidths, g.eulerWidths)
}

func (g *grid) binWidths() geom.Real6 {
	return geom.Compose(g.xyzWidths, g.eulerWidths)
}
