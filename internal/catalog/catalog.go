// Package catalog provides the built-in exercise catalog with muscle-group
// tagging. The catalog ships embedded in the binary; unknown exercise ids
// simply resolve to nothing rather than erroring.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/claude/forgelab/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var exercisesYAML []byte

// MuscleGroupTag marks how strongly an exercise loads one muscle group. An
// exercise may tag several groups at the same tier.
type MuscleGroupTag struct {
	Name      models.MuscleGroup `yaml:"name" json:"name"`
	Primary   bool               `yaml:"primary" json:"primary"`
	Secondary bool               `yaml:"secondary" json:"secondary"`
	Tertiary  bool               `yaml:"tertiary" json:"tertiary"`
}

// Exercise is one catalog entry.
type Exercise struct {
	ID           string           `yaml:"id" json:"id"`
	Name         string           `yaml:"name" json:"name"`
	MuscleGroups []MuscleGroupTag `yaml:"muscle_groups" json:"muscle_groups"`
}

// Catalog indexes exercises by id.
type Catalog struct {
	byID  map[string]*Exercise
	order []string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(exercisesYAML)
}

// Parse builds a catalog from YAML data.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Exercises []Exercise `yaml:"exercises"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing exercise catalog: %w", err)
	}

	valid := make(map[models.MuscleGroup]bool, len(models.AllMuscleGroups))
	for _, g := range models.AllMuscleGroups {
		valid[g] = true
	}

	c := &Catalog{byID: make(map[string]*Exercise, len(doc.Exercises))}
	for i := range doc.Exercises {
		ex := &doc.Exercises[i]
		if ex.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", ex.ID)
		}
		for _, tag := range ex.MuscleGroups {
			if !valid[tag.Name] {
				return nil, fmt.Errorf("catalog entry %q: unknown muscle group %q", ex.ID, tag.Name)
			}
		}
		c.byID[ex.ID] = ex
		c.order = append(c.order, ex.ID)
	}
	return c, nil
}

// Lookup returns the exercise for an id, or ok=false when absent.
func (c *Catalog) Lookup(exerciseID string) (*Exercise, bool) {
	ex, ok := c.byID[exerciseID]
	return ex, ok
}

// Name returns the display name for an id, falling back to the id itself for
// exercises not in the catalog.
func (c *Catalog) Name(exerciseID string) string {
	if ex, ok := c.byID[exerciseID]; ok {
		return ex.Name
	}
	return exerciseID
}

// All returns every exercise in catalog order.
func (c *Catalog) All() []*Exercise {
	out := make([]*Exercise, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
