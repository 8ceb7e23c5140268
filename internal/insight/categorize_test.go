package insight

import (
	"testing"
	"time"
)

func txAt(desc string, valor float64, hour int) Transaction {
	return Transaction{
		Descricao: desc,
		Valor:     valor,
		Data:      time.Date(2025, time.March, 10, hour, 0, 0, 0, time.UTC),
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name           string
		tx             Transaction
		wantCategory   string
		wantConfidence float64
	}{
		{
			name:           "keyword plus small amount bonus",
			tx:             txAt("Compras supermercado", 45.30, 10),
			wantCategory:   "essencial",
			wantConfidence: 0.5,
		},
		{
			name:           "two keyword hits",
			tx:             txAt("Netflix mensalidade", 12.99, 10),
			wantCategory:   "assinatura",
			wantConfidence: 0.8,
		},
		{
			name:           "no match stays uncategorized",
			tx:             txAt("Transferencia mbway", 150, 9),
			wantCategory:   Uncategorized,
			wantConfidence: uncategorizedConfidence,
		},
		{
			name:           "luxury amount bonus",
			tx:             txAt("Relogio designer", 800, 10),
			wantCategory:   "luxo",
			wantConfidence: 0.6,
		},
		{
			name:           "investment amount bonus",
			tx:             txAt("Compra etf", 2000, 10),
			wantCategory:   "investimento",
			wantConfidence: 0.7,
		},
		{
			name:           "dinner hour boosts leisure",
			tx:             txAt("Restaurante", 35, 19),
			wantCategory:   "lazer",
			wantConfidence: 0.6,
		},
		{
			name:           "same place off meal hours",
			tx:             txAt("Restaurante", 35, 16),
			wantCategory:   "lazer",
			wantConfidence: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.tx)
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if diff := got.Confidence - tt.wantConfidence; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCategorizeTieBreak(t *testing.T) {
	// essencial and lazer both score 2: amount and hour bonuses do not
	// apply, so the earlier rule must win.
	got := Categorize(txAt("supermercado restaurante", 150, 9))
	if got.Category != "essencial" {
		t.Fatalf("category = %q, want essencial", got.Category)
	}
}

func TestCategorizeAll(t *testing.T) {
	txs := []Transaction{
		txAt("Gasolina", 60, 10),
		txAt("Cinema", 8, 9),
	}
	got := CategorizeAll(txs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category != "transporte" {
		t.Errorf("got[0].Category = %q, want transporte", got[0].Category)
	}
	if got[1].Category != "lazer" {
		t.Errorf("got[1].Category = %q, want lazer", got[1].Category)
	}
}
