package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an attendance test scenario: store operations to run and
// assertions on the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup establishes initial state. Every setup step must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the steps under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one store operation.
type Step struct {
	// Op names the operation (see the Op constants).
	Op string `yaml:"op"`

	// Args holds the operation arguments. Ops without arguments may omit it.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Outcome is one of the Outcome constants.
	Outcome string `yaml:"outcome"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type (see the Assert constants).
	Type string `yaml:"type"`

	// Attendee and Event select a row or cell (summary, cell, no_row).
	Attendee string `yaml:"attendee,omitempty"`
	Event    string `yaml:"event,omitempty"`

	// Mark is the expected cell mark (cell). Empty means unset.
	Mark string `yaml:"mark,omitempty"`

	// Columns is the expected column order (columns).
	Columns []string `yaml:"columns,omitempty"`

	// Table is "attendees" or "events" (count).
	Table string `yaml:"table,omitempty"`

	// Count is the expected number of rows (count).
	Count int `yaml:"count,omitempty"`

	// Expect contains expected summary fields (summary).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Operations.
const (
	OpInit           = "init"
	OpAddAttendee    = "add_attendee"
	OpUpdateAttendee = "update_attendee"
	OpDeleteAttendee = "delete_attendee"
	OpAddEvent       = "add_event"
	OpUpdateEvent    = "update_event"
	OpDeleteEvent    = "delete_event"
	OpMark           = "mark"
	OpRoundtrip      = "roundtrip"
	OpHydrate        = "hydrate"
)

// Assertion type constants.
const (
	AssertSummary = "summary"
	AssertCell    = "cell"
	AssertColumns = "columns"
	AssertNoRow   = "no_row"
	AssertCount   = "count"
	AssertDurable = "durable"
)

var knownOps = map[string]bool{
	OpInit: true, OpAddAttendee: true, OpUpdateAttendee: true, OpDeleteAttendee: true,
	OpAddEvent: true, OpUpdateEvent: true, OpDeleteEvent: true,
	OpMark: true, OpRoundtrip: true, OpHydrate: true,
}

var knownOutcomes = map[string]bool{
	OutcomeOK: true, OutcomeIgnored: true, OutcomeDuplicate: true, OutcomeNotFound: true,
	OutcomeNoData: true, OutcomeInvalid: true, OutcomeCacheError: true, OutcomeError: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(where string, step Step) error {
	if step.Op == "" {
		return fmt.Errorf("%s: op is required", where)
	}
	if !knownOps[step.Op] {
		return fmt.Errorf("%s: unknown op %q", where, step.Op)
	}
	if step.Expect != nil && !knownOutcomes[step.Expect.Outcome] {
		return fmt.Errorf("%s.expect: unknown outcome %q", where, step.Expect.Outcome)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSummary:
		if a.Attendee == "" {
			return fmt.Errorf("assertions[%d]: attendee is required for summary", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for summary", index)
		}
	case AssertCell:
		if a.Attendee == "" || a.Event == "" {
			return fmt.Errorf("assertions[%d]: attendee and event are required for cell", index)
		}
	case AssertNoRow:
		if a.Attendee == "" {
			return fmt.Errorf("assertions[%d]: attendee is required for no_row", index)
		}
	case AssertCount:
		if a.Table != "attendees" && a.Table != "events" {
			return fmt.Errorf("assertions[%d]: table must be attendees or events for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertColumns, AssertDurable:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
