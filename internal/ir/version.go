package ir

// Version constants for the IR encoding and the translator.
const (
	// IRVersion is the IR encoding version. Bump when EncodeMethod changes.
	IRVersion = "1"

	// TranslatorVersion is the translator release recorded with each run.
	TranslatorVersion = "0.1.0"
)
