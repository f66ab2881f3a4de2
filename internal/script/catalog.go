package script

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a stage or point id is not in the catalog.
var ErrNotFound = errors.New("not found")

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// catalogFile models the YAML document.
type catalogFile struct {
	Version int     `yaml:"version"`
	Stages  []Stage `yaml:"stages"`
}

// Catalog is the ordered, immutable list of stages. It is safe for
// concurrent use because nothing mutates it after Parse.
type Catalog struct {
	stages []Stage
	index  map[string]int
	points map[string]pointRef
}

type pointRef struct {
	stage int
	point int
}

// Default returns the built-in call script.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Stages)
}

// New validates stages and builds a catalog. Stage and point ids must be
// unique across the whole catalog and every text must be bilingual.
func New(stages []Stage) (*Catalog, error) {
	if len(stages) == 0 {
		return nil, errors.New("catalog has no stages")
	}

	c := &Catalog{
		stages: make([]Stage, len(stages)),
		index:  make(map[string]int, len(stages)),
		points: make(map[string]pointRef),
	}
	seen := make(map[string]string)

	for i, s := range stages {
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("stage %d: empty id", i+1)
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("stage %q: id already used by %s", s.ID, prev)
		}
		seen[s.ID] = "stage"
		if err := s.Title.Validate(); err != nil {
			return nil, fmt.Errorf("stage %q title: %w", s.ID, err)
		}
		if len(s.Description) > 0 {
			if err := s.Description.Validate(); err != nil {
				return nil, fmt.Errorf("stage %q description: %w", s.ID, err)
			}
		}

		points := make([]Point, len(s.Points))
		for j, p := range s.Points {
			p.ID = strings.TrimSpace(p.ID)
			if p.ID == "" {
				return nil, fmt.Errorf("stage %q point %d: empty id", s.ID, j+1)
			}
			if prev, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("point %q: id already used by %s", p.ID, prev)
			}
			seen[p.ID] = "point in stage " + s.ID
			if err := p.Text.Validate(); err != nil {
				return nil, fmt.Errorf("point %q: %w", p.ID, err)
			}
			points[j] = p
			c.points[p.ID] = pointRef{stage: i, point: j}
		}
		s.Points = points

		c.stages[i] = s
		c.index[s.ID] = i
	}
	return c, nil
}

// Len returns the number of stages.
func (c *Catalog) Len() int { return len(c.stages) }

// Stages returns the stages in navigation order. The slice is a copy; the
// points and text inside it are shared and must not be modified.
func (c *Catalog) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Stage returns the stage with the given id.
func (c *Catalog) Stage(id string) (Stage, error) {
	i, ok := c.index[id]
	if !ok {
		return Stage{}, fmt.Errorf("stage %q: %w", id, ErrNotFound)
	}
	return c.stages[i], nil
}

// Index returns the position of a stage in navigation order.
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// At returns the stage at position i. It panics if i is out of range.
func (c *Catalog) At(i int) Stage { return c.stages[i] }

// First returns the first stage.
func (c *Catalog) First() Stage { return c.stages[0] }

// Point returns a checklist point and the id of the stage that owns it.
func (c *Catalog) Point(id string) (Point, string, error) {
	ref, ok := c.points[id]
	if !ok {
		return Point{}, "", fmt.Errorf("point %q: %w", id, ErrNotFound)
	}
	s := c.stages[ref.stage]
	return s.Points[ref.point], s.ID, nil
}
