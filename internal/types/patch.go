package types

// VersionMissingLabel stands in for a version that has no package or
// policy attached.
const VersionMissingLabel = "-"

type VersionEntry struct {
	Version string `json:"version"`
	Label   string `json:"label"`
}

type SoftwareTitle struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Versions []VersionEntry `json:"versions"`
}
