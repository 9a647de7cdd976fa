// Package cities maps supported city names to coordinates. The list
// ships embedded in the binary so lookups never touch the network.
package cities

import (
	_ "embed"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

type City struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

type cityFile struct {
	Cities []City `yaml:"cities"`
}

var (
	all   []City
	index map[string]City
)

func init() {
	var f cityFile
	if err := yaml.Unmarshal(citiesYAML, &f); err != nil {
		// Embedded data; a parse failure is a build defect.
		log.Fatalf("cities: failed to parse embedded city list: %v", err)
	}
	all = f.Cities
	index = make(map[string]City, len(all))
	for _, c := range all {
		index[strings.ToLower(c.Name)] = c
	}
}

// All returns the full city list in file order.
func All() []City {
	out := make([]City, len(all))
	copy(out, all)
	return out
}

// Lookup resolves a city name to coordinates, case-insensitively.
func Lookup(name string) (City, bool) {
	c, ok := index[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
