// Package config reads the segpress configuration file.
package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/pressure"
	"gopkg.in/gcfg.v1"
)

// Example is a complete configuration file holding the built-in values
const Example = `# segpress configuration
#
# Every value is optional; missing values keep the defaults shown here.

# Geometry of each segmented mirror. Lengths are in meters, angles in degrees.
[Mirror "M1"]
# Local radius beyond which a sample belongs to a neighbouring segment
ExoRadius = 4.5
# Central obstruction of the center segment (segment 7), 0 for none
CenterHoleRadius = 1.375
# Distance from the optical axis to the vertex of an outer segment
OffAxisDistance = 8.71
# Radius of curvature of the parent surface at its vertex
RadiusOfCurvature = 36.0
# Height of the parent vertex in the mirror-wide frame
VertexZ = 3.9
# Azimuth of segment 1; segments 2..6 follow every 60 degrees
Clocking = 0

[Mirror "M2"]
ExoRadius = 0.55
CenterHoleRadius = 0
OffAxisDistance = 1.08774
RadiusOfCurvature = 4.1683
VertexZ = 24.16
Clocking = 0

[Load]
# Largest allowed difference between an area vector norm and the area
# magnitude of a split pressure file, relative above 1 m^2
AreaTolerance = 1e-14
# Reject fields whose segment masks do not add up to the sample count
RequirePartition = true

[Batch]
# Files processed concurrently, 0 for one per CPU
Workers = 4
`

// MirrorConfig holds the layout of one mirror
type MirrorConfig struct {
	ExoRadius         float64
	CenterHoleRadius  float64
	OffAxisDistance   float64
	RadiusOfCurvature float64
	VertexZ           float64
	Clocking          float64 // degrees
}

type LoadConfig struct {
	AreaTolerance    float64
	RequirePartition bool
}

type BatchConfig struct {
	Workers int
}

// Config is the whole configuration file
type Config struct {
	Mirror map[string]*MirrorConfig
	Load   LoadConfig
	Batch  BatchConfig
}

func mirrorConfig(l geometry.Layout) *MirrorConfig {
	return &MirrorConfig{
		ExoRadius:         l.ExoRadius,
		CenterHoleRadius:  l.CenterHoleRadius,
		OffAxisDistance:   l.OffAxisDistance,
		RadiusOfCurvature: l.RadiusOfCurvature,
		VertexZ:           l.VertexZ,
		Clocking:          l.Clocking * 180 / math.Pi,
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Mirror: map[string]*MirrorConfig{
			geometry.MirrorM1.String(): mirrorConfig(geometry.M1Layout()),
			geometry.MirrorM2.String(): mirrorConfig(geometry.M2Layout()),
		},
		Load: LoadConfig{
			AreaTolerance:    pressure.DefaultAreaTolerance,
			RequirePartition: true,
		},
		Batch: BatchConfig{Workers: 4},
	}
}

// Load reads fname over the defaults and validates the result. An empty
// fname returns the defaults.
func Load(fname string) (*Config, error) {
	c := Default()
	if fname == "" {
		return c, nil
	}
	if err := gcfg.ReadFileInto(c, fname); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", fname, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", fname, err)
	}
	return c, nil
}

// Parse reads a configuration held in a string over the defaults
func Parse(text string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadStringInto(c, text); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidationError reports an out of range configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every section
func (c *Config) Validate() error {
	names := make([]string, 0, len(c.Mirror))
	for name := range c.Mirror {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t, err := geometry.ParseMirrorType(name)
		if err != nil {
			return ValidationError{Field: fmt.Sprintf("Mirror %q", name), Message: "unknown mirror"}
		}
		// subsection names are case sensitive; Layout only reads the canonical one
		if name != t.String() {
			return ValidationError{Field: fmt.Sprintf("Mirror %q", name), Message: fmt.Sprintf("write the mirror name as %q", t.String())}
		}
		m := c.Mirror[name]
		field := func(f string) string { return fmt.Sprintf("Mirror %q %s", name, f) }
		if m.ExoRadius <= 0 {
			return ValidationError{Field: field("ExoRadius"), Message: "must be positive"}
		}
		if m.CenterHoleRadius < 0 || m.CenterHoleRadius >= m.ExoRadius {
			return ValidationError{Field: field("CenterHoleRadius"), Message: "must be in [0, ExoRadius)"}
		}
		if m.RadiusOfCurvature <= 0 {
			return ValidationError{Field: field("RadiusOfCurvature"), Message: "must be positive"}
		}
		if m.OffAxisDistance < 0 {
			return ValidationError{Field: field("OffAxisDistance"), Message: "must not be negative"}
		}
	}
	if c.Load.AreaTolerance < 0 {
		return ValidationError{Field: "Load AreaTolerance", Message: "must not be negative"}
	}
	if c.Batch.Workers < 0 {
		return ValidationError{Field: "Batch Workers", Message: "must not be negative"}
	}
	return nil
}

// Layout returns the configured layout of mirror t
func (c *Config) Layout(t geometry.MirrorType) (geometry.Layout, error) {
	l, err := geometry.DefaultLayout(t)
	if err != nil {
		return geometry.Layout{}, err
	}
	m, ok := c.Mirror[t.String()]
	if !ok {
		return l, nil
	}
	l.ExoRadius = m.ExoRadius
	l.CenterHoleRadius = m.CenterHoleRadius
	l.OffAxisDistance = m.OffAxisDistance
	l.RadiusOfCurvature = m.RadiusOfCurvature
	l.VertexZ = m.VertexZ
	l.Clocking = m.Clocking * math.Pi / 180
	return l, nil
}

// NewMirror builds mirror t from its configured layout
func (c *Config) NewMirror(t geometry.MirrorType) (*geometry.Mirror, error) {
	l, err := c.Layout(t)
	if err != nil {
		return nil, err
	}
	return geometry.NewMirror(t, l)
}

// FieldOptions returns the field construction options of the [Load] section
func (c *Config) FieldOptions() []pressure.Option {
	return []pressure.Option{
		pressure.WithAreaTolerance(c.Load.AreaTolerance),
		pressure.WithPartitionCheck(c.Load.RequirePartition),
	}
}
