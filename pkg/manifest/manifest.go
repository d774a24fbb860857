package manifest

// RunManifest is the YAML summary written beside an export. It lists every
// bucket file touched and every record that could not be read.
type RunManifest struct {
	RunID       string          `yaml:"run_id,omitempty"`
	GeneratedAt string          `yaml:"generated_at"`
	Source      string          `yaml:"source"`
	Profile     string          `yaml:"profile"`
	Encoding    string          `yaml:"encoding"`
	TotalInputs int             `yaml:"total_inputs"`
	Exported    int             `yaml:"exported"`
	Failed      int             `yaml:"failed"`
	Unrouted    int             `yaml:"unrouted,omitempty"`
	Buckets     []BucketSummary `yaml:"buckets"`
	Failures    []Failure       `yaml:"failures,omitempty"`
}

// BucketSummary describes one written bucket file.
type BucketSummary struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Profile   string `yaml:"profile"`
	Rows      int    `yaml:"rows"`
	SizeBytes int64  `yaml:"size_bytes"`
}

// Failure is one record that was skipped.
type Failure struct {
	Ref          string `yaml:"ref"`
	StatusCode   int    `yaml:"status_code,omitempty"`
	ErrorType    string `yaml:"error_type"`
	ErrorMessage string `yaml:"error_message"`
}
