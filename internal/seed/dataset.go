// ABOUTME: Declarative seed datasets embedded in the binary as YAML.
// ABOUTME: Records reference each other by name; ids are resolved at seed time.
package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/harperreed/lift/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// Dataset is the full set of records written on first launch.
type Dataset struct {
	MuscleGroups []string         `yaml:"muscle_groups"`
	Muscles      []MuscleRecord   `yaml:"muscles"`
	Equipment    []string         `yaml:"equipment"`
	Exercises    []ExerciseRecord `yaml:"exercises"`
	User         UserRecord       `yaml:"user"`
	Routines     []RoutineRecord  `yaml:"routines"`
	Splits       []SplitRecord    `yaml:"splits"`
}

// MuscleRecord names a muscle and its group.
type MuscleRecord struct {
	Name        string `yaml:"name"`
	MuscleGroup string `yaml:"muscle_group"`
}

// ExerciseRecord names an exercise, its equipment, group and muscle activations.
type ExerciseRecord struct {
	Title       string              `yaml:"title"`
	Equipment   string              `yaml:"equipment"`
	MuscleGroup string              `yaml:"muscle_group"`
	Muscles     []ExerciseMuscleRef `yaml:"muscles"`
}

// ExerciseMuscleRef links to a muscle by name.
type ExerciseMuscleRef struct {
	Name      string  `yaml:"name"`
	Intensity float64 `yaml:"intensity"`
}

// UserRecord is the default user created on first launch.
type UserRecord struct {
	Username string                  `yaml:"username"`
	Name     string                  `yaml:"name"`
	Email    string                  `yaml:"email"`
	Password string                  `yaml:"password"`
	Stats    models.UserProfileStats `yaml:"stats"`
}

// RoutineRecord is a sample routine. Exercises are resolved by (title, equipment).
type RoutineRecord struct {
	Title     string                  `yaml:"title"`
	Exercises []RoutineExerciseRecord `yaml:"exercises"`
}

// RoutineExerciseRecord is one exercise of a sample routine with its prescribed sets.
type RoutineExerciseRecord struct {
	Title     string      `yaml:"title"`
	Equipment string      `yaml:"equipment"`
	Sets      []SetRecord `yaml:"sets"`
}

// SetRecord is one prescribed set.
type SetRecord struct {
	Order  int     `yaml:"order"`
	Weight float64 `yaml:"weight"`
	Reps   int     `yaml:"reps"`
}

// SplitRecord is a sample split. Days name routines by title; "Rest" is a rest day.
type SplitRecord struct {
	Name   string   `yaml:"name"`
	Active bool     `yaml:"active"`
	Days   []string `yaml:"days"`
}

// DefaultDataset returns the dataset embedded in the binary.
func DefaultDataset() (*Dataset, error) {
	return LoadDataset(embedded, "data/reference.yaml", "data/samples.yaml")
}

// LoadDataset reads and merges YAML documents from fsys. Later files append to
// list fields; a later user record replaces an earlier one.
func LoadDataset(fsys fs.FS, paths ...string) (*Dataset, error) {
	ds := &Dataset{}
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", p, err)
		}
		part, err := ParseDataset(raw)
		if err != nil {
			return nil, fmt.Errorf("parse seed file %s: %w", p, err)
		}
		ds.merge(part)
	}
	return ds, nil
}

// ParseDataset decodes one YAML document. Unknown keys are rejected.
func ParseDataset(raw []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) merge(o *Dataset) {
	d.MuscleGroups = append(d.MuscleGroups, o.MuscleGroups...)
	d.Muscles = append(d.Muscles, o.Muscles...)
	d.Equipment = append(d.Equipment, o.Equipment...)
	d.Exercises = append(d.Exercises, o.Exercises...)
	d.Routines = append(d.Routines, o.Routines...)
	d.Splits = append(d.Splits, o.Splits...)
	if o.User.Username != "" {
		d.User = o.User
	}
}
