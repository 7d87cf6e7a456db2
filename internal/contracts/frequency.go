package contracts

import "fmt"

// Frequency represents the rebalance schedule of a simulation
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

// AllFrequencies returns all supported frequencies in order
func AllFrequencies() []Frequency {
	return []Frequency{
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyMonthly,
		FrequencyQuarterly,
	}
}

// ParseFrequency converts a config string to a Frequency
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily", "DAILY":
		return FrequencyDaily, nil
	case "weekly", "WEEKLY":
		return FrequencyWeekly, nil
	case "monthly", "MONTHLY":
		return FrequencyMonthly, nil
	case "quarterly", "QUARTERLY":
		return FrequencyQuarterly, nil
	default:
		return "", fmt.Errorf("unknown rebalance frequency %q", s)
	}
}

// String returns the frequency name
func (f Frequency) String() string {
	return string(f)
}

// IsValid reports whether the frequency is one of the supported values
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	default:
		return false
	}
}
