package enums

import "fmt"

// DigestFrequency maps to the digest_frequency enum in Postgres.
type DigestFrequency string

const (
	DigestFrequencyNone   DigestFrequency = "none"
	DigestFrequencyDaily  DigestFrequency = "daily"
	DigestFrequencyWeekly DigestFrequency = "weekly"
)

var validDigestFrequencies = []DigestFrequency{
	DigestFrequencyNone,
	DigestFrequencyDaily,
	DigestFrequencyWeekly,
}

// IsValid checks whether the given frequency matches the canonical enum.
func (d DigestFrequency) IsValid() bool {
	for _, candidate := range validDigestFrequencies {
		if candidate == d {
			return true
		}
	}
	return false
}

// Schedulable reports whether the frequency produces digest runs.
func (d DigestFrequency) Schedulable() bool {
	return d == DigestFrequencyDaily || d == DigestFrequencyWeekly
}

// ParseDigestFrequency converts raw strings into DigestFrequency.
func ParseDigestFrequency(value string) (DigestFrequency, error) {
	for _, candidate := range validDigestFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid digest frequency %q", value)
}
