// Package fixtures holds the canonical end-to-end CSL scenarios as a
// single YAML-encoded table, the way protocompile's internal/corpora
// turns a directory of test inputs into table-driven tests — except
// CSL's scenarios are few and short enough to live in one file rather
// than a directory tree of individual *.csl inputs, so the table is
// embedded YAML instead of a filesystem walk.
package fixtures

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var scenariosYAML []byte

// Scenario is one end-to-end example: a schema source text plus the
// diagnostic counts a correct lex+parse pass over it must produce.
type Scenario struct {
	Name         string `yaml:"name"`
	Input        string `yaml:"input"`
	WantErrors   int    `yaml:"wantErrors"`
	WantWarnings int    `yaml:"wantWarnings"`
}

var all []Scenario

func init() {
	if err := yaml.Unmarshal(scenariosYAML, &all); err != nil {
		panic(fmt.Sprintf("fixtures: malformed scenarios.yaml: %v", err))
	}
	if len(all) == 0 {
		panic("fixtures: scenarios.yaml defined no scenarios")
	}
}

// All returns every scenario, in file order.
func All() []Scenario {
	return append([]Scenario(nil), all...)
}

// Named looks up a single scenario by name, for tests that only need
// one of the six.
func Named(name string) (Scenario, bool) {
	for _, s := range all {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
