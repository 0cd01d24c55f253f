// Package config provides configuration models and helpers for dataset loads.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownFieldTypes are the scalar type hints the tabular loaders understand.
var knownFieldTypes = map[string]struct{}{
	"str": {}, "int": {}, "float": {}, "bool": {}, "list": {},
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and log lines will use a generic label",
		})
	}

	if !strings.HasPrefix(p.InputPath, "http://") && !strings.HasPrefix(p.InputPath, "https://") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input_path",
			Message:  fmt.Sprintf("input_path %q must start with http:// or https://", p.InputPath),
		})
	}

	switch p.InputType {
	case "vcf", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input_type",
			Message:  fmt.Sprintf("input_type %q is not a recognized kind; falling through to the generic tabular loader", p.InputType),
		})
	}

	if strings.TrimSpace(p.OutputPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output_path",
			Message:  "output_path must not be empty",
		})
	}

	for col, typ := range p.FieldTypes {
		if _, ok := knownFieldTypes[typ]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "field_types." + col,
				Message:  fmt.Sprintf("unknown type hint %q; column will be loaded as text", typ),
			})
		}
	}

	issues = append(issues, validateStorage(p)...)
	return issues
}

// validateStorage validates the storage section.
func validateStorage(p Pipeline) []Issue {
	var issues []Issue

	kind := p.StorageKindOrDefault()
	switch kind {
	case "sqlite":
		// DSN comes from output_path; nothing more to check here.
	case "postgres":
		if strings.TrimSpace(p.Storage.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.dsn",
				Message:  "postgres storage requires a non-empty dsn",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", kind),
		})
	}

	return issues
}
