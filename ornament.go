package treebloom

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultOrnamentPalette is the fixed ornament color palette.
var DefaultOrnamentPalette = []string{
	"#C5A059", // retro gold
	"#722F37", // wine red
	"#708090", // slate blue
	"#B76E79", // rose gold
	"#F7E7CE", // champagne
}

// SatellitesPerOrnament is the number of golden sparkles orbiting each ornament.
const SatellitesPerOrnament = 4

// OrnamentRecord is the static description of one ornament.
type OrnamentRecord struct {
	TreePosition   Vec3
	NebulaPosition Vec3
	BaseScale      float64
	ColorIndex     int
	Color          Color
}

// Interpolate returns the ornament's layout position at progress p.
func (r OrnamentRecord) Interpolate(p float64) Vec3 {
	return lerpVec3(r.TreePosition, r.NebulaPosition, p)
}

// SatelliteRecord is one golden sparkle. It belongs to exactly one ornament
// and orbits it at a fixed offset rotated about the vertical axis.
type SatelliteRecord struct {
	Owner  int
	Offset Vec3
}

// OrnamentConfig controls how the ornament field is generated.
type OrnamentConfig struct {
	// Count is the fixed number of ornaments.
	Count int
	// SpiralHeight, SpiralRadius and SpiralTurns describe the tree layout spiral.
	SpiralHeight float64
	SpiralRadius float64
	SpiralTurns  float64
	// NebulaRadius is the annulus of the nebula layout.
	NebulaRadius Range
	// Scale is the uniform ornament scale.
	Scale float64
	// Palette is the list of "#rrggbb" ornament colors.
	Palette []string
	// SatelliteDistance is the range of satellite orbit radii.
	SatelliteDistance Range
	// SatelliteScale is the satellite scale before the breathe term.
	SatelliteScale float64
	// OrbitSpeed is the satellite orbit rate in radians per second.
	OrbitSpeed float64
}

// DefaultOrnamentConfig returns the standard ornament configuration.
func DefaultOrnamentConfig() OrnamentConfig {
	return OrnamentConfig{
		Count:             150,
		SpiralHeight:      14,
		SpiralRadius:      6,
		SpiralTurns:       6,
		NebulaRadius:      Range{15, 30},
		Scale:             0.4,
		Palette:           DefaultOrnamentPalette,
		SatelliteDistance: Range{0.4, 0.8},
		SatelliteScale:    0.08,
		OrbitSpeed:        2,
	}
}

// Satellite breathe term: 1 + sin(time*breatheRate + index) * breatheDepth.
const (
	breatheRate  = 5
	breatheDepth = 0.3
)

// OrnamentField owns the ornaments and their satellites.
type OrnamentField struct {
	config     OrnamentConfig
	palette    []Color
	records    []OrnamentRecord
	satellites []SatelliteRecord

	// positions of the ornaments computed by the last ComputeTransforms call,
	// reused by the satellites of the same frame.
	current []Vec3
}

// NewOrnamentField generates cfg.Count ornaments, evenly spaced along the
// spiral, each with SatellitesPerOrnament satellites. The satellites of one
// ornament share an orbit radius and differ in direction.
func NewOrnamentField(cfg OrnamentConfig, rng *rand.Rand) *OrnamentField {
	if cfg.Count <= 0 {
		cfg.Count = DefaultOrnamentConfig().Count
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultOrnamentPalette
	}

	f := &OrnamentField{
		config:     cfg,
		palette:    make([]Color, len(cfg.Palette)),
		records:    make([]OrnamentRecord, cfg.Count),
		satellites: make([]SatelliteRecord, 0, cfg.Count*SatellitesPerOrnament),
		current:    make([]Vec3, cfg.Count),
	}
	for i, hex := range cfg.Palette {
		f.palette[i] = ColorFromHex(hex)
	}

	for i := range f.records {
		t := float64(i) / float64(cfg.Count)
		idx := rng.IntN(len(f.palette))
		f.records[i] = OrnamentRecord{
			TreePosition:   SpiralPoint(t, cfg.SpiralHeight, cfg.SpiralRadius, cfg.SpiralTurns),
			NebulaPosition: NebulaPoint(rng, cfg.NebulaRadius.Min, cfg.NebulaRadius.Max),
			BaseScale:      cfg.Scale,
			ColorIndex:     idx,
			Color:          f.palette[idx],
		}

		dist := cfg.SatelliteDistance.sample(rng)
		for j := 0; j < SatellitesPerOrnament; j++ {
			f.satellites = append(f.satellites, SatelliteRecord{
				Owner:  i,
				Offset: RandomDirection(rng).Mul(dist),
			})
		}
	}
	return f
}

// Len returns the number of ornaments.
func (f *OrnamentField) Len() int {
	return len(f.records)
}

// SatelliteCount returns the number of satellites.
func (f *OrnamentField) SatelliteCount() int {
	return len(f.satellites)
}

// Records returns the ornament records. The returned slice MUST NOT be mutated.
func (f *OrnamentField) Records() []OrnamentRecord {
	return f.records
}

// Satellites returns the satellite records. The returned slice MUST NOT be mutated.
func (f *OrnamentField) Satellites() []SatelliteRecord {
	return f.satellites
}

// Palette returns the parsed palette colors.
func (f *OrnamentField) Palette() []Color {
	return f.palette
}

// ComputeTransforms writes one Instance per ornament into ornaments and one
// per satellite into satellites, growing either slice if needed.
//
// Ornaments follow the particle interpolation contract with a stronger,
// undamped pointer repulsion. Satellites sit at their owner's position this
// frame plus their offset rotated about +Y by Time*OrbitSpeed.
func (f *OrnamentField) ComputeTransforms(s FieldState, ornaments, satellites []Instance) ([]Instance, []Instance) {
	ornaments = resizeInstances(ornaments, len(f.records))
	satellites = resizeInstances(satellites, len(f.satellites))
	tree := s.TreeLayout()

	for i := range f.records {
		r := &f.records[i]
		pos := r.Interpolate(s.Progress)
		if tree {
			pos = ornamentRepulsion.displace(pos, s.Pointer)
		}
		f.current[i] = pos
		ornaments[i] = Instance{Position: pos, Scale: r.BaseScale, Color: r.Color}
	}

	orbit := mgl64.Rotate3DY(s.Time * f.config.OrbitSpeed)
	for i := range f.satellites {
		sat := &f.satellites[i]
		offset := orbit.Mul3x1(sat.Offset)
		breathe := 1 + math.Sin(s.Time*breatheRate+float64(i))*breatheDepth
		satellites[i] = Instance{
			Position: f.current[sat.Owner].Add(offset),
			Scale:    f.config.SatelliteScale * breathe,
			Color:    ColorGold,
		}
	}
	return ornaments, satellites
}
