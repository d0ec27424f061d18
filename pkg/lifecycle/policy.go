package lifecycle

// Policy decides whether containers survive the end of a scope.
type Policy struct {
	// KeepOnSuccess retains containers when no test failed.
	KeepOnSuccess bool
	// KeepOnFailure retains containers when at least one test failed.
	KeepOnFailure bool
}

// Keep reports whether containers should be left running.
func (p Policy) Keep(failed bool) bool {
	return (p.KeepOnSuccess && !failed) || (p.KeepOnFailure && failed)
}

// LogDumpTarget is where TearDown archives logs after a failure.
// Both fields must be set for a dump to happen.
type LogDumpTarget struct {
	Dir      string
	FileName string
}

// Configured reports whether both the directory and file name are present.
func (t LogDumpTarget) Configured() bool {
	return t.Dir != "" && t.FileName != ""
}

// ShouldDump reports whether logs must be archived for the given outcome.
func (t LogDumpTarget) ShouldDump(failed bool) bool {
	return failed && t.Configured()
}
