package data

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// ColliderDef is an authored collision primitive.
type ColliderDef struct {
	Shape     string     `yaml:"shape"` // sphere, box, capsule, mesh
	Radius    float64    `yaml:"radius"`
	Height    float64    `yaml:"height"`
	Size      [3]float64 `yaml:"size"`
	Convex    bool       `yaml:"convex"`
	MeshBound float64    `yaml:"mesh_bound"`
}

// AggregateDef places the rolling body.
type AggregateDef struct {
	Position [3]float64  `yaml:"position"`
	Collider ColliderDef `yaml:"collider"`
	Mass     float64     `yaml:"mass"`
}

// SpawnEntry describes one collectible, or Count copies scattered within
// Spread of Position.
type SpawnEntry struct {
	Name     string      `yaml:"name"`
	Tag      string      `yaml:"tag"`
	Position [3]float64  `yaml:"position"`
	Scale    float64     `yaml:"scale"`     // uniform
	ScaleMax float64     `yaml:"scale_max"` // >Scale: random in [Scale, ScaleMax]
	Count    int         `yaml:"count"`
	Spread   float64     `yaml:"spread"` // radius on the ground plane
	Collider ColliderDef `yaml:"collider"`
}

// SceneFile is the on-disk scene.
type SceneFile struct {
	Seed        int64        `yaml:"seed"`
	Aggregate   AggregateDef `yaml:"aggregate"`
	Collectible []SpawnEntry `yaml:"collectibles"`
	Track       []TrackEntry `yaml:"track"`
}

// Placement is one resolved body ready to spawn.
type Placement struct {
	Name     string
	Tag      string
	Position [3]float64
	Scale    float64
	Collider ColliderDef
}

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*SceneFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene decodes scene YAML.
func ParseScene(raw []byte) (*SceneFile, error) {
	var f SceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if f.Aggregate.Collider.Shape == "" {
		f.Aggregate.Collider = ColliderDef{Shape: "sphere", Radius: 0.5}
	}
	for i := range f.Collectible {
		e := &f.Collectible[i]
		if e.Scale <= 0 {
			return nil, fmt.Errorf("scene collectible %d (%q): scale must be positive", i, e.Name)
		}
		if e.Tag == "" {
			e.Tag = "Collectible"
		}
		if e.Collider.Shape == "" {
			e.Collider = ColliderDef{Shape: "box", Size: [3]float64{1, 1, 1}}
		}
	}
	if err := sortTrack(f.Track); err != nil {
		return nil, err
	}
	return &f, nil
}

// Placements expands every spawn entry into concrete bodies, deterministic
// for a given seed. Scattered copies are named "<name>#<n>".
func (f *SceneFile) Placements() []Placement {
	rng := rand.New(rand.NewSource(f.Seed))
	out := make([]Placement, 0, len(f.Collectible))
	for _, e := range f.Collectible {
		n := e.Count
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			p := Placement{Name: e.Name, Tag: e.Tag, Position: e.Position, Scale: e.Scale, Collider: e.Collider}
			if n > 1 {
				p.Name = fmt.Sprintf("%s#%d", e.Name, i+1)
			}
			if e.Spread > 0 {
				angle := rng.Float64() * 2 * math.Pi
				dist := math.Sqrt(rng.Float64()) * e.Spread
				p.Position[0] += math.Cos(angle) * dist
				p.Position[2] += math.Sin(angle) * dist
			}
			if e.ScaleMax > e.Scale {
				p.Scale = e.Scale + rng.Float64()*(e.ScaleMax-e.Scale)
			}
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of bodies the scene spawns besides the aggregate.
func (f *SceneFile) Count() int {
	n := 0
	for _, e := range f.Collectible {
		if e.Count <= 0 {
			n++
		} else {
			n += e.Count
		}
	}
	return n
}
