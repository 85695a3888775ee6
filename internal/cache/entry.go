package cache

import "time"

// Entry records the inputs of the most recent build for one configuration.
type Entry struct {
	// Key identifies the configuration: "<profile>|<triple>", with "host"
	// standing in for an empty triple
	Key string `json:"key"`

	// Fingerprint is the SHA-256 digest over the declared build inputs
	Fingerprint string `json:"fingerprint"`

	// ToolchainVersion is the cargo version the build ran with
	ToolchainVersion string `json:"toolchain_version"`

	// Timestamp when this entry was stored
	Timestamp time.Time `json:"timestamp"`
}

// Key builds the configuration key for a profile and target triple.
func Key(profile, triple string) string {
	if triple == "" {
		triple = "host"
	}
	return profile + "|" + triple
}
