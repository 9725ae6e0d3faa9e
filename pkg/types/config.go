package types

// IngestConfig holds settings for the loading and normalization stage.
type IngestConfig struct {
	// Sources maps a source-body identifier to the CSV file carrying its
	// raw records. Missing files are warned about and skipped; the run
	// fails only if no source file can be read at all.
	Sources map[string]string `json:"sources" yaml:"sources"`
}

// ClusterConfig holds settings for the policy deduplication stage.
type ClusterConfig struct {
	// DateWindowDays bounds how far apart two records' publication dates
	// may lie while still being cluster candidates (default 14).
	DateWindowDays int `json:"date_window_days" yaml:"date_window_days"`

	// SimilarityThreshold is the minimum title similarity for records from
	// the same source body (default 0.75).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// CrossSourceThreshold is the minimum title similarity for records
	// from different source bodies. It is deliberately higher so that
	// only near-identical cross-postings merge (default 0.9).
	CrossSourceThreshold float64 `json:"cross_source_threshold" yaml:"cross_source_threshold"`
}

// FilterConfig holds settings for the AI-relevance filter stage.
type FilterConfig struct {
	// Threshold is the exclusive ai_score cutoff: records are retained
	// only when their score is strictly greater. The historical value is
	// relevance.ScoreThreshold; tests may substitute synthetic values.
	Threshold int `json:"threshold" yaml:"threshold"`

	// LexiconPath optionally points to a YAML file overriding the built-in
	// keyword lexicon.
	LexiconPath string `json:"lexicon_path,omitempty" yaml:"lexicon_path,omitempty"`
}

// QuantifyConfig holds the score bounds for the quantification stage.
type QuantifyConfig struct {
	// Neutral is the regulatory score assigned when no polarity phrase
	// matches (default 5).
	Neutral int `json:"neutral" yaml:"neutral"`

	// Min and Max clamp the regulatory score scale (defaults 1 and 10).
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// OutputConfig holds settings for the output writer stage.
type OutputConfig struct {
	// TablePath is the destination for the analyzed CSV table.
	TablePath string `json:"table_path" yaml:"table_path"`

	// MetadataPath is the destination for the metadata sidecar JSON.
	MetadataPath string `json:"metadata_path" yaml:"metadata_path"`
}

// ArchiveConfig holds settings for the policy archive store.
type ArchiveConfig struct {
	// ArchiveDir is the directory containing the SQLite archive database.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AlertConfig holds settings for risk alert detection.
type AlertConfig struct {
	// Threshold is the inclusive regulatory score at which a record is
	// flagged as high risk (default 8).
	Threshold int `json:"threshold" yaml:"threshold"`

	// Domains restricts alerts to records tagged with at least one of the
	// listed domains. Empty means no domain filter.
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`

	// Sources restricts alerts to the listed source bodies. Empty means
	// no source filter.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// PipelineConfig groups all stage configurations for one batch run.
type PipelineConfig struct {
	Ingest   IngestConfig   `json:"ingest" yaml:"ingest"`
	Cluster  ClusterConfig  `json:"cluster" yaml:"cluster"`
	Filter   FilterConfig   `json:"filter" yaml:"filter"`
	Quantify QuantifyConfig `json:"quantify" yaml:"quantify"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}
