package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateAppConfig checks the host configuration.
func ValidateAppConfig(c *AppConfig) error {
	var errs ValidationErrors

	if c.SchemaConfig == "" {
		errs = append(errs, ValidationError{Field: "schema_config", Message: "is required"})
	}
	if c.UserDB == "" {
		errs = append(errs, ValidationError{Field: "user_db", Message: "is required"})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)})
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)})
	}
	switch c.Logging.Output {
	case "", "stderr", "stdout":
	case "file":
		if c.Logging.FilePath == "" {
			errs = append(errs, ValidationError{Field: "logging.file_path", Message: "is required when output is file"})
		}
	default:
		errs = append(errs, ValidationError{Field: "logging.output", Message: fmt.Sprintf("unknown output %q", c.Logging.Output)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

//go:embed switcher.schema.json
var switcherSchemaJSON []byte

const switcherSchemaURL = "switcher.schema.json"

var (
	switcherSchema     *jsonschema.Schema
	switcherSchemaErr  error
	switcherSchemaOnce sync.Once
)

func compiledSwitcherSchema() (*jsonschema.Schema, error) {
	switcherSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(switcherSchemaURL, bytes.NewReader(switcherSchemaJSON)); err != nil {
			switcherSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		switcherSchema, switcherSchemaErr = compiler.Compile(switcherSchemaURL)
	})
	return switcherSchema, switcherSchemaErr
}

// ValidateSwitcher checks the shape of the sections the switcher and its
// components read. A null tree (missing file) is valid. Schema violations
// are returned as ValidationErrors, one per offending value.
func ValidateSwitcher(root Node) error {
	if root.IsNull() {
		return nil
	}

	schema, err := compiledSwitcherSchema()
	if err != nil {
		return fmt.Errorf("compile switcher schema: %w", err)
	}

	// The validator expects encoding/json shaped values.
	data, err := json.Marshal(root.Value())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate switcher settings: %w", err)
	}
	return flattenViolations(ve, nil)
}

func flattenViolations(ve *jsonschema.ValidationError, out ValidationErrors) ValidationErrors {
	if len(ve.Causes) == 0 {
		field := ve.InstanceLocation
		if field == "" {
			field = "/"
		}
		return append(out, ValidationError{Field: field, Message: ve.Message})
	}
	for _, cause := range ve.Causes {
		out = flattenViolations(cause, out)
	}
	return out
}
