// Package config defines the canonical, JSON-serializable configuration model
// for the mitochondrial reference dataset loader. It is intentionally small
// and explicit so that dataset definitions can be loaded from disk and passed
// through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job": "gnomad_mito",
//	  "input_path": "https://example.org/datasets/gnomad.chrM.vcf.gz",
//	  "input_type": "vcf",
//	  "output_path": "/data/reference/gnomad_mito.db",
//	  "field_types": { "AF": "float" },
//	  "annotate": { "variant_id": "variant_id" },
//	  "storage": { "kind": "sqlite", "db": { "table": "mito_variants" } }
//	}
package config

import (
	"encoding/json"

	"mitoref/pkg/records"
)

// Pipeline describes one dataset load end to end. It is the top-level object
// decoded from a dataset file (e.g., configs/datasets/*.json).
type Pipeline struct {
	// Job names the run for logging and metrics labeling.
	Job string `json:"job"`

	// InputPath is the source URL. Must start with http:// or https://.
	InputPath string `json:"input_path"`

	// InputType selects the loader: "vcf", "json", or anything else for
	// generic whitespace/tab-delimited tabular text.
	InputType string `json:"input_type"`

	// OutputPath is the destination of the written table. For the "sqlite"
	// storage kind this is the database file path; for "postgres" it names
	// the destination table (the DSN comes from storage.db.dsn).
	OutputPath string `json:"output_path"`

	// DownloadDir is where fetched files land. Empty means os.TempDir().
	DownloadDir string `json:"download_dir,omitempty"`

	// FieldTypes maps column name to a scalar type hint ("str", "int",
	// "float", "bool") applied by the tabular loaders. Unspecified columns
	// stay text. Ignored by the VCF loader, which has a fixed row schema.
	FieldTypes map[string]string `json:"field_types,omitempty"`

	// Annotate maps new column names to registered derivation names. Each
	// derivation computes its column from a snapshot of the table taken
	// before any annotation in the batch is applied (non-cumulative).
	Annotate map[string]string `json:"annotate,omitempty"`

	// AnnotateFuncs lets Go callers supply derivations as function values
	// directly, bypassing the registry. Entries here take precedence over
	// same-named entries in Annotate. Never serialized.
	AnnotateFuncs map[string]records.Derivation `json:"-"`

	// SkipVerifySSL disables TLS certificate verification and, matching the
	// original loader's contract, also skips the HEAD size check that
	// enables download reuse.
	SkipVerifySSL bool `json:"skip_verify_ssl,omitempty"`

	// Storage selects and configures the output table engine.
	Storage Storage `json:"storage"`
}

// Storage selects the sink used to persist the keyed table.
type Storage struct {
	// Kind selects the storage implementation: "sqlite" (default) or
	// "postgres".
	Kind string `json:"kind"`

	// DB carries engine-specific connection options.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the connection string. Unused by "sqlite", whose DSN is the
	// pipeline's output_path.
	DSN string `json:"dsn,omitempty"`

	// Table is the destination table name. Defaults to "mito_variants".
	Table string `json:"table,omitempty"`

	// Options carries engine-specific knobs the core pipeline does not
	// interpret, e.g. {"busy_timeout_ms": 10000} for sqlite.
	Options Options `json:"options,omitempty"`
}

// InputTypeOrDefault normalizes InputType: recognized values pass through,
// everything else (including empty) falls to the generic "table" loader.
func (p Pipeline) InputTypeOrDefault() string {
	switch p.InputType {
	case "vcf", "json":
		return p.InputType
	default:
		return "table"
	}
}

// StorageKindOrDefault returns the storage kind, defaulting to "sqlite".
func (p Pipeline) StorageKindOrDefault() string {
	if p.Storage.Kind == "" {
		return "sqlite"
	}
	return p.Storage.Kind
}

// TableOrDefault returns the destination table name, defaulting to
// "mito_variants".
func (p Pipeline) TableOrDefault() string {
	if p.Storage.DB.Table == "" {
		return "mito_variants"
	}
	return p.Storage.DB.Table
}

// MarshalConfig renders a Pipeline back to indented JSON (for -validate
// output and tests).
func MarshalConfig(p Pipeline) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
