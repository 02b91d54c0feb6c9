package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/besselx/pkg/bessel"
	"github.com/roach88/besselx/pkg/kernel"
)

// DefaultTolerance is the mixed absolute/relative tolerance used when a
// scenario does not set one.
const DefaultTolerance = 1e-12

// Scenario is a table of evaluation requests with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Family and Scaling apply to every case that does not override them.
	Family  string `yaml:"family,omitempty"`
	Scaling string `yaml:"scaling,omitempty"`

	// Tolerance bounds |got-want| <= Tolerance*max(1, |want|).
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is one request and what it must produce.
//
// Expect and Error are mutually exclusive; a case with neither only checks
// that evaluation succeeds with the listed warnings. Warnings lists
// substrings of the expected sink messages in order; an absent list
// means no warnings at all.
type Case struct {
	Name     string       `yaml:"name,omitempty"`
	Family   string       `yaml:"family,omitempty"`
	Scaling  string       `yaml:"scaling,omitempty"`
	Nu       float64      `yaml:"nu"`
	Z        [2]float64   `yaml:"z"`
	N        *int         `yaml:"n,omitempty"`
	Expect   [][2]float64 `yaml:"expect,omitempty"`
	Error    string       `yaml:"error,omitempty"`
	Warnings []string     `yaml:"warnings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, fails schema.cue, or is internally inconsistent.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario is LoadScenario for in-memory content. path is used in
// error messages only.
func ParseScenario(path string, data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateSchema(path, doc); err != nil {
		return nil, err
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks what schema.cue cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must be positive")
	}

	for i := range s.Cases {
		c := &s.Cases[i]
		if _, err := s.Request(i); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if c.Error != "" && c.Expect != nil {
			return fmt.Errorf("cases[%d]: expect and error are mutually exclusive", i)
		}
		if c.Error != "" && len(c.Warnings) > 0 {
			return fmt.Errorf("cases[%d]: a fatal case emits no warnings", i)
		}
		if c.Expect != nil && len(c.Expect) != c.count() {
			return fmt.Errorf("cases[%d]: expect has %d values, n is %d", i, len(c.Expect), c.count())
		}
	}
	return nil
}

// CaseName is the case's name, or its 1-based position.
func (s *Scenario) CaseName(i int) string {
	if s.Cases[i].Name != "" {
		return s.Cases[i].Name
	}
	return fmt.Sprintf("case_%d", i+1)
}

// Request builds the evaluation request for case i, applying the
// scenario-level family and scaling. The request itself is not validated;
// that is the evaluator's job.
func (s *Scenario) Request(i int) (bessel.Request, error) {
	c := s.Cases[i]

	familyName := firstNonEmpty(c.Family, s.Family)
	if familyName == "" {
		return bessel.Request{}, fmt.Errorf("family is required (set it on the scenario or the case)")
	}
	family, err := bessel.ParseFamily(familyName)
	if err != nil {
		return bessel.Request{}, err
	}

	scaling := kernel.Unscaled
	if name := firstNonEmpty(c.Scaling, s.Scaling); name != "" {
		if scaling, err = bessel.ParseScaling(name); err != nil {
			return bessel.Request{}, err
		}
	}

	return bessel.Request{
		Family:  family,
		Scaling: scaling,
		Nu:      c.Nu,
		Z:       complex(c.Z[0], c.Z[1]),
		N:       c.count(),
	}, nil
}

// tolerance returns the scenario tolerance or DefaultTolerance.
func (s *Scenario) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}

// count is n, defaulting to 1.
func (c Case) count() int {
	if c.N == nil {
		return 1
	}
	return *c.N
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
