package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Subscription is a recurring-payment pattern detected in the history.
type Subscription struct {
	Descricao  string  `json:"descricao"`
	Frequency  string  `json:"frequency"` // semanal, mensal, anual
	AvgValor   float64 `json:"avgValor"`
	Count      int     `json:"count"`
	Confidence float64 `json:"confidence"`
}

// Insight is one rule-based recommendation.
type Insight struct {
	Tipo     string `json:"tipo"`
	Severity string `json:"severity"` // info, warning, alert
	Mensagem string `json:"mensagem"`
}

// DetectSubscriptions groups transactions by normalized description and
// keeps groups whose payment intervals are regular and whose amounts are
// consistent. Confidence combines interval fit, amount consistency and the
// number of occurrences.
func DetectSubscriptions(txs []Transaction) []Subscription {
	groups := make(map[string][]Transaction)
	var order []string
	for _, tx := range txs {
		key := normalizeDescription(tx.Descricao)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tx)
	}

	var out []Subscription
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Data.Before(group[j].Data) })

		var intervals []float64
		for i := 1; i < len(group); i++ {
			days := group[i].Data.Sub(group[i-1].Data).Hours() / 24
			if days > 0 {
				intervals = append(intervals, days)
			}
		}
		if len(intervals) == 0 {
			continue
		}

		freq, freqConfidence := detectFrequency(intervals)
		if freq == "" {
			continue
		}

		var total float64
		vals := make([]float64, len(group))
		for i, tx := range group {
			vals[i] = abs(tx.Valor)
			total += vals[i]
		}
		avg := total / float64(len(group))

		amountConfidence := 1.0
		if avg > 0 {
			cv := Volatility(vals) / avg
			switch {
			case cv > 0.25:
				amountConfidence = 0.3
			case cv > 0.10:
				amountConfidence = 0.7
			}
		}

		occurrenceBoost := math.Min(float64(len(group))/5, 1)
		confidence := freqConfidence * amountConfidence * (0.5 + 0.5*occurrenceBoost)
		if confidence < 0.5 {
			continue
		}

		out = append(out, Subscription{
			Descricao:  key,
			Frequency:  freq,
			AvgValor:   avg,
			Count:      len(group),
			Confidence: confidence,
		})
	}
	return out
}

// detectFrequency matches the mean interval between payments against the
// known cadences, with a tolerance per cadence.
func detectFrequency(intervals []float64) (string, float64) {
	mean := 0.0
	for _, d := range intervals {
		mean += d
	}
	mean /= float64(len(intervals))

	cadences := []struct {
		name      string
		days      float64
		tolerance float64
	}{
		{"semanal", 7, 2},
		{"mensal", 30, 5},
		{"anual", 365, 15},
	}
	for _, c := range cadences {
		if math.Abs(mean-c.days) <= c.tolerance {
			// Closer to the nominal interval scores higher.
			fit := 1 - math.Abs(mean-c.days)/c.tolerance*0.5
			return c.name, fit
		}
	}
	return "", 0
}

func normalizeDescription(desc string) string {
	s := strings.ToLower(strings.TrimSpace(desc))
	// Strip trailing reference numbers so "netflix #1042" and "netflix #1103"
	// group together.
	fields := strings.Fields(s)
	var kept []string
	for _, f := range fields {
		f = strings.Trim(f, "#-")
		if f == "" || strings.IndexFunc(f, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Recommendations runs the fixed battery of threshold rules over the
// transaction set and emits templated advice.
func Recommendations(txs []Transaction, totalIncome float64, subs []Subscription) []Insight {
	var out []Insight

	var totalExpenses float64
	byCategory := make(map[string]float64)
	for _, c := range CategorizeAll(txs) {
		v := abs(c.Transaction.Valor)
		totalExpenses += v
		byCategory[c.Category] += v
	}
	if totalExpenses == 0 {
		return out
	}

	// Discretionary concentration: leisure plus luxury above 30% of spend.
	discretionary := byCategory["lazer"] + byCategory["luxo"]
	if share := discretionary / totalExpenses * 100; share > 30 {
		out = append(out, Insight{
			Tipo:     "gastos_discricionarios",
			Severity: "warning",
			Mensagem: fmt.Sprintf("Gastos discricionarios representam %.0f%% do total. Reduzir lazer e luxo libertaria %.2f por mes.", share, discretionary),
		})
	}

	// Subscription load.
	if len(subs) > 0 {
		var monthly float64
		for _, s := range subs {
			switch s.Frequency {
			case "semanal":
				monthly += s.AvgValor * 4
			case "anual":
				monthly += s.AvgValor / 12
			default:
				monthly += s.AvgValor
			}
		}
		out = append(out, Insight{
			Tipo:     "assinaturas",
			Severity: "info",
			Mensagem: fmt.Sprintf("Detetadas %d assinaturas recorrentes (~%.2f/mes). Rever as que nao usa.", len(subs), monthly),
		})
	}

	// Savings rate floor.
	if totalIncome > 0 {
		if rate := SavingsRate(totalIncome, totalExpenses); rate < 10 {
			out = append(out, Insight{
				Tipo:     "taxa_poupanca",
				Severity: "alert",
				Mensagem: fmt.Sprintf("Taxa de poupanca de %.1f%% esta abaixo dos 10%% recomendados.", rate),
			})
		}
	}

	// Rising spend trend.
	if slope := Trend(txs); slope > 0 && len(txs) >= 4 {
		avg := totalExpenses / float64(len(txs))
		if avg > 0 && slope/avg > 0.05 {
			out = append(out, Insight{
				Tipo:     "tendencia",
				Severity: "warning",
				Mensagem: "Os gastos apresentam tendencia crescente no periodo analisado.",
			})
		}
	}

	// High-severity anomalies.
	for _, a := range DetectAnomalies(txs) {
		if a.Severity == SeverityCritical || a.Severity == SeverityHigh {
			out = append(out, Insight{
				Tipo:     "anomalia",
				Severity: "alert",
				Mensagem: fmt.Sprintf("Transacao fora do padrao: %q (%.2f, z=%.1f).", a.Transaction.Descricao, abs(a.Transaction.Valor), a.ZScore),
			})
		}
	}

	// Canned saving tips for the single heaviest category.
	if tip, ok := savingTips[topCategory(byCategory)]; ok {
		out = append(out, Insight{Tipo: "dica", Severity: "info", Mensagem: tip})
	}

	return out
}

func topCategory(byCategory map[string]float64) string {
	best, bestVal := "", 0.0
	// Deterministic pick: iterate the rule table order, not the map.
	for _, rule := range categoryRules {
		if v := byCategory[rule.name]; v > bestVal {
			best, bestVal = rule.name, v
		}
	}
	return best
}

var savingTips = map[string]string{
	"essencial":   "Compare fornecedores de energia e faca lista de compras: evita gastos desnecessarios.",
	"lazer":       "Procure eventos gratuitos e organize atividades em casa com amigos.",
	"transporte":  "Use transporte publico ou partilhe viagens: economia ate 60%.",
	"assinatura":  "Cancele assinaturas que nao usa ha mais de um mes.",
	"educacao":    "Use bibliotecas publicas e cursos online gratuitos.",
	"luxo":        "Espere 48 horas antes de compras acima de 500: reduz compras por impulso.",
	"emergencia":  "Construa um fundo de emergencia de 6 meses de despesas.",
	"divida":      "Amortize primeiro as dividas com juros mais altos.",
}
