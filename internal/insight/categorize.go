package insight

import "strings"

// Categorized is the outcome of scoring one transaction against the keyword
// table.
type Categorized struct {
	Transaction Transaction `json:"transaction"`
	Category    string      `json:"category"`
	Confidence  float64     `json:"confidence"`
}

// Uncategorized is assigned when no category reaches the score threshold.
const (
	Uncategorized           = "uncategorized"
	scoreThreshold          = 1.5
	uncategorizedConfidence = 0.3
	keywordWeight           = 2.0
)

// categoryRule pairs a category with its keyword list. The table is a slice,
// not a map: when two categories tie on score, the one that appears first
// wins, giving a deterministic result instead of map iteration order.
type categoryRule struct {
	name     string
	keywords []string
}

var categoryRules = []categoryRule{
	{"essencial", []string{"supermercado", "mercearia", "renda", "luz", "agua", "gas", "farmacia", "seguro", "comida", "padaria"}},
	{"lazer", []string{"restaurante", "cinema", "teatro", "bar", "festa", "viagem", "concerto", "jogo", "hobby", "delivery"}},
	{"investimento", []string{"acoes", "crypto", "imobiliario", "obrigacoes", "fundo", "etf", "corretora"}},
	{"divida", []string{"emprestimo", "credito", "hipoteca", "juros", "prestacao"}},
	{"rendimento", []string{"salario", "freelance", "dividendos", "arrendamento", "negocio"}},
	{"assinatura", []string{"netflix", "spotify", "prime", "ginasio", "software", "mensalidade", "subscricao"}},
	{"transporte", []string{"uber", "gasolina", "combustivel", "estacionamento", "autocarro", "metro", "comboio", "portagem", "voo"}},
	{"educacao", []string{"curso", "livro", "certificacao", "formacao", "escola", "universidade"}},
	{"emergencia", []string{"medico", "hospital", "reparacao", "oficina", "urgencia", "imprevisto"}},
	{"luxo", []string{"designer", "premium", "exclusivo", "vip", "primeira classe", "joalharia"}},
}

// Categorize scores tx against every rule and returns the best category with
// a confidence in (0,1]. Keyword substring hits weigh 2 each; amount and
// time-of-day heuristics add fixed bonuses. Below the threshold the
// transaction stays uncategorized with confidence 0.3.
func Categorize(tx Transaction) Categorized {
	desc := strings.ToLower(tx.Descricao)
	amount := abs(tx.Valor)
	hour := tx.Data.Hour()

	best := Categorized{Transaction: tx, Category: Uncategorized, Confidence: uncategorizedConfidence}
	bestScore := 0.0

	for _, rule := range categoryRules {
		score := 0.0
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				score += keywordWeight
			}
		}

		switch rule.name {
		case "luxo":
			if amount > 500 {
				score += 1
			}
		case "essencial":
			if amount < 100 {
				score += 0.5
			}
		case "investimento":
			if amount > 1000 {
				score += 1.5
			}
		case "lazer":
			// Meal hours favor dining out.
			if (hour >= 11 && hour <= 14) || (hour >= 18 && hour <= 21) {
				score += 1
			}
		}

		// Strict > keeps the first rule on ties.
		if score > bestScore {
			bestScore = score
			best.Category = rule.name
		}
	}

	if bestScore >= scoreThreshold {
		best.Confidence = bestScore / 5
		if best.Confidence > 1 {
			best.Confidence = 1
		}
		return best
	}
	return Categorized{Transaction: tx, Category: Uncategorized, Confidence: uncategorizedConfidence}
}

// CategorizeAll maps Categorize over the whole list.
func CategorizeAll(txs []Transaction) []Categorized {
	out := make([]Categorized, len(txs))
	for i, tx := range txs {
		out[i] = Categorize(tx)
	}
	return out
}
