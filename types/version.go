package types

// Version is the canonical project version.
// The CLI, the recording format and the link framing share this version.
const Version = "0.3.0"

// FormatVersion is the recording format version written into inspect output.
// Kept in lockstep with Version.
const FormatVersion = Version
