package windowing

import "github.com/upfall/sensor-backend-go/internal/models"

// MajorityLabel resolves one representative activity label for a window by
// majority vote over the subset's activity tags. When several labels share
// the maximum count the lexicographically smallest wins, keeping the result
// deterministic. Returns false for an empty subset or when no sample
// carries an activity tag.
func MajorityLabel(subset []models.SensorSample) (string, bool) {
	if len(subset) == 0 {
		return "", false
	}

	counts := make(map[string]int)
	for _, s := range subset {
		if s.Activity == "" {
			continue
		}
		counts[s.Activity]++
	}
	if len(counts) == 0 {
		return "", false
	}

	var best string
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}

	return best, true
}
