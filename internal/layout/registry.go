package layout

import "fmt"

// NewDetector creates a detector for the given strategy
func NewDetector(strategy string, rules Rules) (Detector, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	switch strategy {
	case "marker", "":
		return NewMarkerDetector(rules), nil
	case "split":
		return NewSplitDetector(rules), nil
	default:
		return nil, fmt.Errorf("unknown detector strategy: %s", strategy)
	}
}
