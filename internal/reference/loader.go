// Package reference loads the static sizing reference tables the service resolves against.
package reference

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"example.com/sleeveselector/internal/sizing"
)

//go:embed reference.yaml
var defaultDocument []byte

//go:embed reference.schema.json
var schemaDocument []byte

const schemaURL = "reference.schema.json"

var (
	// ErrMalformed is matched by MalformedTableError.
	ErrMalformed = errors.New("malformed reference table")
	// ErrTableNotFound indicates no table exists under the requested name.
	ErrTableNotFound = errors.New("reference table not found")
)

// MalformedTableError lists every problem found in one table, or in the document when Table is empty.
type MalformedTableError struct {
	Table    string
	Problems []string
}

func (e *MalformedTableError) Error() string {
	scope := "reference document"
	if e.Table != "" {
		scope = fmt.Sprintf("reference table %q", e.Table)
	}
	return fmt.Sprintf("%s is malformed: %s", scope, strings.Join(e.Problems, "; "))
}

func (e *MalformedTableError) Is(target error) bool {
	return target == ErrMalformed
}

// Overlap records two entries whose ranges share values on one dimension.
type Overlap struct {
	Table     string
	Dimension string
	First     string
	Second    string
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s: %s overlaps %s on %s", o.Table, o.First, o.Second, o.Dimension)
}

type document struct {
	Tables []tableDocument `json:"tables"`
}

type tableDocument struct {
	Name       string             `json:"name"`
	Unit       string             `json:"unit"`
	Tolerance  float64            `json:"tolerance"`
	Precision  int                `json:"precision"`
	Dimensions []sizing.Dimension `json:"dimensions"`
	Entries    []sizing.Entry     `json:"entries"`
}

// LoadDefault parses the reference document compiled into the binary.
func LoadDefault() (*Set, error) {
	return Parse(defaultDocument)
}

// Load reads a YAML or JSON reference document from disk.
func Load(path string) (*Set, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("reference document %s: unsupported extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference document: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse validates a YAML or JSON document and builds the table set.
func Parse(data []byte) (*Set, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedTableError{Problems: []string{err.Error()}}
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, &MalformedTableError{Problems: []string{err.Error()}}
	}
	if err := validateSchema(normalized); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, &MalformedTableError{Problems: []string{err.Error()}}
	}

	tables := make([]sizing.Table, 0, len(doc.Tables))
	seen := make(map[string]struct{}, len(doc.Tables))
	for _, td := range doc.Tables {
		if _, dup := seen[td.Name]; dup {
			return nil, &MalformedTableError{Table: td.Name, Problems: []string{"duplicate table name"}}
		}
		seen[td.Name] = struct{}{}

		table, err := buildTable(td)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return newSet(tables), nil
}

func validateSchema(instance []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDocument))
	if err != nil {
		return fmt.Errorf("failed to unmarshal reference schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return fmt.Errorf("failed to add reference schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile reference schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(instance))
	if err != nil {
		return &MalformedTableError{Problems: []string{err.Error()}}
	}
	if err := schema.Validate(inst); err != nil {
		return &MalformedTableError{Problems: []string{err.Error()}}
	}
	return nil
}

func buildTable(td tableDocument) (sizing.Table, error) {
	var problems []string

	unit, err := sizing.ParseUnit(td.Unit)
	if err != nil || !unit.Valid() {
		problems = append(problems, fmt.Sprintf("unknown unit %q", td.Unit))
	}
	if td.Tolerance < 0 {
		problems = append(problems, "tolerance must be >= 0")
	}

	dims := make(map[string]struct{}, len(td.Dimensions))
	for _, dim := range td.Dimensions {
		if _, dup := dims[dim.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate dimension %q", dim.Name))
		}
		dims[dim.Name] = struct{}{}
	}

	labels := make(map[string]struct{}, len(td.Entries))
	for _, entry := range td.Entries {
		if strings.TrimSpace(entry.Label) == "" {
			problems = append(problems, "entry with empty label")
			continue
		}
		if _, dup := labels[entry.Label]; dup {
			problems = append(problems, fmt.Sprintf("duplicate label %q", entry.Label))
		}
		labels[entry.Label] = struct{}{}

		for _, dim := range td.Dimensions {
			rng, ok := entry.Ranges[dim.Name]
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: no range for dimension %q", entry.Label, dim.Name))
				continue
			}
			if rng.Min > rng.Max || (rng.ExclusiveMax && rng.Min == rng.Max) {
				problems = append(problems, fmt.Sprintf("%s: %s range %s is empty", entry.Label, dim.Name, rng))
			}
			if dim.Max > 0 && rng.Min > dim.Max {
				problems = append(problems, fmt.Sprintf("%s: %s range %s starts above dimension max %g", entry.Label, dim.Name, rng, dim.Max))
			}
		}
		for name := range entry.Ranges {
			if _, ok := dims[name]; !ok {
				problems = append(problems, fmt.Sprintf("%s: range for undeclared dimension %q", entry.Label, name))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return sizing.Table{}, &MalformedTableError{Table: td.Name, Problems: problems}
	}

	return sizing.Table{
		Name:       td.Name,
		Unit:       unit,
		Tolerance:  td.Tolerance,
		Precision:  td.Precision,
		Dimensions: td.Dimensions,
		Entries:    td.Entries,
	}, nil
}
