package ir

// Version constants recorded with every stored run.
const (
	// SchemaVersion is the record encoding version.
	SchemaVersion = "1"

	// Version is the besselx release.
	Version = "0.1.0"
)
