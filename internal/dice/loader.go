package dice

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rollstat/rollstat/internal/roll"
)

// Definition is a YAML-declared custom die.
//
// The sides field is either an integer (a fair die with faces 1..N) or a
// list mixing bare face values and fully specified faces:
//
//	name: blessed_d20
//	sides: 20
//	tags:
//	  crit: 20
//	  fumble: [1]
//
//	name: loaded_d6
//	sides:
//	  - 1
//	  - 2
//	  - { value: 6, probability: 0.5, tags: { loaded: 1 } }
type Definition struct {
	Name  string              `yaml:"name"`
	Sides SidesSpec           `yaml:"sides"`
	Tags  map[string]FaceList `yaml:"tags"`
}

// SidesSpec holds the decoded sides field: a side count or explicit faces.
type SidesSpec struct {
	Count int
	Faces []roll.Face
}

// UnmarshalYAML accepts an integer side count or a face list.
func (s *SidesSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&s.Count); err != nil {
			return fmt.Errorf("dice: sides must be an integer or a list: %w", err)
		}
		return nil
	case yaml.SequenceNode:
		for i, item := range node.Content {
			face, err := decodeFace(item)
			if err != nil {
				return fmt.Errorf("dice: side %d: %w", i+1, err)
			}
			s.Faces = append(s.Faces, face)
		}
		return nil
	default:
		return fmt.Errorf("dice: sides must be an integer or a list")
	}
}

func decodeFace(node *yaml.Node) (roll.Face, error) {
	if node.Kind == yaml.ScalarNode {
		var v int
		if err := node.Decode(&v); err != nil {
			return roll.Face{}, fmt.Errorf("bare face must be an integer: %w", err)
		}
		return roll.FaceOf(v), nil
	}

	var spec struct {
		Value       int            `yaml:"value"`
		Probability *float64       `yaml:"probability"`
		Tags        map[string]int `yaml:"tags"`
	}
	if err := node.Decode(&spec); err != nil {
		return roll.Face{}, fmt.Errorf("invalid face entry: %w", err)
	}
	if spec.Probability == nil {
		return roll.Face{}, fmt.Errorf("face %d: explicit faces need a probability", spec.Value)
	}
	tags := make(roll.TagSet, len(spec.Tags))
	for name, count := range spec.Tags {
		tags[name] = count
	}
	return roll.WeightedFace(spec.Value, *spec.Probability, tags), nil
}

// FaceList holds the face values a tag applies to; YAML may give a single
// value or a list.
type FaceList []int

// UnmarshalYAML accepts an integer or a sequence of integers.
func (f *FaceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v int
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("dice: tag faces must be integers: %w", err)
		}
		*f = FaceList{v}
		return nil
	}
	var values []int
	if err := node.Decode(&values); err != nil {
		return fmt.Errorf("dice: tag faces must be integers: %w", err)
	}
	*f = values
	return nil
}

// Roll builds the die the definition describes.
//
// Errors: roll.ErrInvalidDie for impossible side/probability layouts, plus
// decoding errors for a missing name.
func (d Definition) Roll() (roll.Roll, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("dice: definition without a name")
	}
	assign := make(roll.TagAssignment, len(d.Tags))
	for name, values := range d.Tags {
		assign[name] = values
	}
	if len(d.Sides.Faces) > 0 {
		return roll.DieFaces(d.Sides.Faces, assign)
	}
	return roll.Die(d.Sides.Count, assign)
}

// Load reads one die definition from a YAML file.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("dice: reading %q: %w", path, err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("dice: parsing %q: %w", path, err)
	}
	return def, nil
}

// LoadDir reads every *.yaml die definition in dir and returns the built
// rolls keyed by definition name, in deterministic file order.
//
// Errors: the first unreadable or invalid definition aborts the load;
// duplicate names are rejected.
func LoadDir(dir string) (map[string]roll.Roll, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dice: reading definition dir %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && (filepath.Ext(e.Name()) == ".yaml" || filepath.Ext(e.Name()) == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	out := make(map[string]roll.Roll, len(paths))
	for _, path := range paths {
		def, err := Load(path)
		if err != nil {
			return nil, err
		}
		r, err := def.Roll()
		if err != nil {
			return nil, fmt.Errorf("dice: building %q from %q: %w", def.Name, path, err)
		}
		if _, exists := out[def.Name]; exists {
			return nil, fmt.Errorf("dice: duplicate die name %q in %q", def.Name, path)
		}
		out[def.Name] = r
	}
	return out, nil
}
