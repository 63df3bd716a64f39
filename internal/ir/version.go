package ir

// Version constants for the trace/report format and the tool.
const (
	// FormatVersion is the trace and report format version.
	FormatVersion = "1"

	// ToolVersion is the slotbench version recorded with every run.
	ToolVersion = "0.1.0"
)
