// Package seed holds the dataset loaded into a freshly bootstrapped aerodb store.
//
// The dataset is five ordered collections. Dependent records (planes, trips,
// seat assignments) refer to lookup records by name, the way a person would
// write them down; resolving those names to ids is the bootstrapper's job.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed aero.yaml
var defaultDataset []byte

type Dataset struct {
	Passengers []string    `yaml:"passengers"`
	Companies  []string    `yaml:"companies"`
	Planes     []PlaneSeed `yaml:"planes"`
	Trips      []TripSeed  `yaml:"trips"`
	Taken      []TakenSeed `yaml:"taken"`
}

type PlaneSeed struct {
	Name    string `yaml:"name"`
	Seats   int    `yaml:"seats"`
	Company string `yaml:"company"`
}

type TripSeed struct {
	Company string    `yaml:"company"`
	Plane   string    `yaml:"plane"`
	TimeOut time.Time `yaml:"time_out"`
	TimeIn  time.Time `yaml:"time_in"`
	TownOut string    `yaml:"town_out"`
	TownIn  string    `yaml:"town_in"`
}

// TakenSeed assigns Place on a trip to a passenger. TripID is the trip's
// 1-based position in Dataset.Trips, which is also its id in a fresh store.
type TakenSeed struct {
	TripID    uint   `yaml:"trip"`
	Place     int    `yaml:"place"`
	Passenger string `yaml:"passenger"`
}

// Parse decodes a YAML dataset.
func Parse(b []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("seed: failed to parse dataset: %w", err)
	}
	return &d, nil
}

// Load reads and decodes the YAML dataset at path.
func Load(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: failed to read %s: %w", path, err)
	}
	return Parse(b)
}

// Default returns the dataset compiled into the binary.
func Default() (*Dataset, error) {
	return Parse(defaultDataset)
}

// LoadOrDefault loads path, or the compiled-in dataset when path is empty.
func LoadOrDefault(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
