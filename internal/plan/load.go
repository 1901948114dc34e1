package plan

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded plan that reproduces the legacy network
// migration.
func Default() (*Plan, error) {
	p, err := ParseYAML(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default plan: %w", err)
	}
	return p, nil
}

// Load reads a plan from a .yaml, .yml or .cue file and validates it.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Code: ErrCodeMissingFile, Message: "plan file not found: " + path, Err: err}
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return ParseCUE(data, path)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, invalidf("unsupported plan file extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// ParseYAML decodes and validates a YAML plan. Unknown keys are rejected.
func ParseYAML(data []byte) (*Plan, error) {
	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&p); err != nil {
		return nil, &ConfigError{Code: ErrCodeInvalidPlan, Message: "failed to parse YAML", Err: err}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseCUE unifies a CUE plan with the embedded #Plan schema, then
// decodes and validates it. filename is used in CUE error positions.
func ParseCUE(data []byte, filename string) (*Plan, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile plan schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Plan"))

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &ConfigError{Code: ErrCodeInvalidPlan, Message: "failed to compile CUE", Err: err}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &ConfigError{Code: ErrCodeInvalidPlan, Message: "plan does not match schema", Err: err}
	}

	var p Plan
	if err := unified.Decode(&p); err != nil {
		return nil, &ConfigError{Code: ErrCodeInvalidPlan, Message: "failed to decode CUE plan", Err: err}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
