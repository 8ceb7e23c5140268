package insight

import (
	"math"
	"sort"
	"strings"
)

// Volatility returns the population standard deviation of the values.
// Fewer than two values yields 0.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// Trend returns the ordinary-least-squares slope of absolute amounts against
// their sequence index after sorting by date. Positive means spending is
// growing over the window.
func Trend(txs []Transaction) float64 {
	if len(txs) < 2 {
		return 0
	}
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Data.Before(sorted[j].Data) })

	n := float64(len(sorted))
	sumX := n * (n - 1) / 2
	sumXX := n * (n - 1) * (2*n - 1) / 6
	var sumY, sumXY float64
	for i, tx := range sorted {
		v := abs(tx.Valor)
		sumY += v
		sumXY += v * float64(i)
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// SavingsRate returns (income − expenses) / income as a percentage, or 0
// when there is no income to divide by.
func SavingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// Metrics are the four sub-scores feeding the composite health score.
type Metrics struct {
	SavingsRate         float64 `json:"savingsRate"`         // percent
	DebtToIncome        float64 `json:"debtToIncome"`        // ratio
	EmergencyFundMonths float64 `json:"emergencyFundMonths"` // months of expenses covered
	InvestmentRatio     float64 `json:"investmentRatio"`     // invested / income
}

// Health is the composite score with its letter grade.
type Health struct {
	Score   int     `json:"score"`
	Grade   string  `json:"grade"`
	Metrics Metrics `json:"metrics"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ComputeHealth weighs four sub-metrics at 25 points each, clamping every
// sub-metric to [0,1] before weighting, then maps the total to a grade.
func ComputeHealth(m Metrics) Health {
	score := 0.0
	score += clamp01(m.SavingsRate/20) * 25
	score += clamp01(1-m.DebtToIncome) * 25
	score += clamp01(m.EmergencyFundMonths/6) * 25
	score += clamp01(m.InvestmentRatio/0.2) * 25

	rounded := int(math.Round(score))
	return Health{Score: rounded, Grade: Grade(rounded), Metrics: m}
}

// Grade maps a health score to its letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C+"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

func debtToIncome(txs []Transaction, income float64) float64 {
	if income <= 0 {
		return 0
	}
	return sumMatching(txs, "divida") / income
}

func investmentRatio(txs []Transaction, income float64) float64 {
	if income <= 0 {
		return 0
	}
	return sumMatching(txs, "investimento") / income
}

// sumMatching totals transactions whose description hits any keyword of the
// named category rule.
func sumMatching(txs []Transaction, category string) float64 {
	var keywords []string
	for _, rule := range categoryRules {
		if rule.name == category {
			keywords = rule.keywords
			break
		}
	}
	var total float64
	for _, tx := range txs {
		desc := strings.ToLower(tx.Descricao)
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				total += abs(tx.Valor)
				break
			}
		}
	}
	return total
}
