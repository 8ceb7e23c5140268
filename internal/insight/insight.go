// Package insight implements the heuristic analysis engine: keyword-based
// categorization, descriptive statistics, anomaly detection and rule-based
// recommendations over in-memory transaction lists. Every function is pure;
// the caller composes them and supplies the data on each invocation.
package insight

import "time"

// Transaction is the minimal record the engine operates on. Negative values
// are treated as expenses by the statistics helpers; the categorizer only
// looks at the absolute amount.
type Transaction struct {
	Descricao string    `json:"descricao"`
	Valor     float64   `json:"valor"`
	Data      time.Time `json:"data"`
	Categoria string    `json:"categoria,omitempty"`
}

// Report bundles one full engine run for a transaction set.
type Report struct {
	Categorized     []Categorized  `json:"categorized"`
	Volatility      float64        `json:"volatility"`
	Trend           float64        `json:"trend"`
	SavingsRate     float64        `json:"savingsRate"`
	Health          Health         `json:"health"`
	Anomalies       []Anomaly      `json:"anomalies"`
	Subscriptions   []Subscription `json:"subscriptions"`
	Recommendations []Insight      `json:"recommendations"`
}

// Analyze composes the individual engine functions into a full report.
// totalIncome is the gross income for the same window; pass 0 when unknown.
func Analyze(txs []Transaction, totalIncome float64) Report {
	var totalExpenses float64
	for _, tx := range txs {
		totalExpenses += abs(tx.Valor)
	}

	savings := SavingsRate(totalIncome, totalExpenses)
	health := ComputeHealth(Metrics{
		SavingsRate:         savings,
		DebtToIncome:        debtToIncome(txs, totalIncome),
		EmergencyFundMonths: 0,
		InvestmentRatio:     investmentRatio(txs, totalIncome),
	})
	subs := DetectSubscriptions(txs)

	return Report{
		Categorized:     CategorizeAll(txs),
		Volatility:      Volatility(amounts(txs)),
		Trend:           Trend(txs),
		SavingsRate:     savings,
		Health:          health,
		Anomalies:       DetectAnomalies(txs),
		Subscriptions:   subs,
		Recommendations: Recommendations(txs, totalIncome, subs),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func amounts(txs []Transaction) []float64 {
	vals := make([]float64, len(txs))
	for i, tx := range txs {
		vals[i] = abs(tx.Valor)
	}
	return vals
}
