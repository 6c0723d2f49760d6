package ir

// Version constants stamped into traces.
const (
	// TraceVersion is the trace format version.
	TraceVersion = "1"

	// EngineVersion is the strand engine version.
	EngineVersion = "0.1.0"
)
