package ir

// Version constants for the program encoding and engine.
const (
	// IRVersion is the program encoding version.
	IRVersion = "1"

	// EngineVersion is the uncalc engine version.
	EngineVersion = "0.1.0"
)
