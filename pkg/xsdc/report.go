package xsdc

// Failure pairs a schema id with the error message that removed it from the
// generated partition.
type Failure struct {
	SchemaID string
	Err      string
}

// Report is the outcome of one batch run. The three partitions are disjoint
// and together cover the full dependency closure of the configured roots.
type Report struct {
	// Roots holds the canonical ids the configured root names mapped to,
	// in configuration order.
	Roots []string

	// Generated lists schemas for which a module was written, in generation
	// order.
	Generated []string

	// Stubbed lists schemas that were referenced but unavailable and got a
	// placeholder module instead.
	Stubbed []string

	// Failed lists schemas whose parse or resolution failed, with the
	// originating error message.
	Failed []Failure

	// Expanded lists schemas whose module was rewritten by the
	// expand-and-embed pass.
	Expanded []string
}

// FailedIDs returns just the schema ids of the failed partition.
func (r *Report) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.SchemaID)
	}
	return ids
}

// ClosureSize returns the total number of schemas the run accounted for.
func (r *Report) ClosureSize() int {
	return len(r.Generated) + len(r.Stubbed) + len(r.Failed)
}

// RootFailed reports whether any of the given root schema ids ended in the
// failed partition.
func (r *Report) RootFailed(rootIDs []string) bool {
	failed := make(map[string]bool, len(r.Failed))
	for _, f := range r.Failed {
		failed[f.SchemaID] = true
	}
	for _, id := range rootIDs {
		if failed[id] {
			return true
		}
	}
	return false
}
