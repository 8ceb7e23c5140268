package insight

import "math"

// Severity buckets for anomalous transactions.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// anomalyThreshold is the z-score above which a transaction is flagged.
const anomalyThreshold = 2.5

// maxZScore caps the score when the remaining amounts have zero deviation.
// The reports are serialized to JSON, which has no encoding for Inf.
const maxZScore = 99

// Anomaly is a transaction whose absolute amount sits far from the rest of
// the set.
type Anomaly struct {
	Transaction Transaction `json:"transaction"`
	ZScore      float64     `json:"zScore"`
	Severity    string      `json:"severity"`
}

// DetectAnomalies flags every transaction whose absolute amount has a
// z-score above 2.5. Each amount is scored against the mean and standard
// deviation of the OTHER amounts; including the candidate in its own
// baseline caps the z-score at sqrt(n-1) and masks exactly the outliers
// this is meant to catch. A zero remaining deviation with a differing
// amount scores maxZScore.
func DetectAnomalies(txs []Transaction) []Anomaly {
	if len(txs) < 3 {
		return nil
	}

	vals := amounts(txs)
	var sum, sumSq float64
	for _, v := range vals {
		sum += v
		sumSq += v * v
	}

	n := float64(len(vals) - 1)
	var out []Anomaly
	for i, tx := range txs {
		mean := (sum - vals[i]) / n
		variance := (sumSq-vals[i]*vals[i])/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		stddev := math.Sqrt(variance)

		var z float64
		switch {
		case stddev > 0:
			z = abs(vals[i]-mean) / stddev
			if z > maxZScore {
				z = maxZScore
			}
		case vals[i] != mean:
			z = maxZScore
		default:
			continue
		}
		if z > anomalyThreshold {
			out = append(out, Anomaly{Transaction: tx, ZScore: z, Severity: severityFor(z)})
		}
	}
	return out
}

func severityFor(z float64) string {
	switch {
	case z > 5:
		return SeverityCritical
	case z > 3:
		return SeverityHigh
	case z > 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
