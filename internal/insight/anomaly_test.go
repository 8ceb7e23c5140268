package insight

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func amountTxs(values ...float64) []Transaction {
	txs := make([]Transaction, len(values))
	for i, v := range values {
		txs[i] = Transaction{
			Descricao: "tx",
			Valor:     v,
			Data:      time.Date(2025, time.January, i+1, 0, 0, 0, 0, time.UTC),
		}
	}
	return txs
}

func TestDetectAnomalies(t *testing.T) {
	t.Run("single extreme outlier", func(t *testing.T) {
		got := DetectAnomalies(amountTxs(10, 12, 11, 9, 500))
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		a := got[0]
		if a.Transaction.Valor != 500 {
			t.Errorf("flagged valor = %v, want 500", a.Transaction.Valor)
		}
		if a.ZScore <= 2.5 {
			t.Errorf("zScore = %v, want > 2.5", a.ZScore)
		}
		if a.Severity != SeverityCritical && a.Severity != SeverityHigh {
			t.Errorf("severity = %q, want critical or high", a.Severity)
		}
	})

	t.Run("uniform amounts", func(t *testing.T) {
		if got := DetectAnomalies(amountTxs(50, 50, 50, 50)); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("too few transactions", func(t *testing.T) {
		if got := DetectAnomalies(amountTxs(10, 500)); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("outlier against constant baseline", func(t *testing.T) {
		got := DetectAnomalies(amountTxs(5, 5, 5, 100))
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Transaction.Valor != 100 {
			t.Errorf("flagged valor = %v, want 100", got[0].Transaction.Valor)
		}
		if got[0].ZScore != maxZScore {
			t.Errorf("zScore = %v, want %v", got[0].ZScore, float64(maxZScore))
		}
		if got[0].Severity != SeverityCritical {
			t.Errorf("severity = %q, want %q", got[0].Severity, SeverityCritical)
		}
	})

	t.Run("scores stay finite and serializable", func(t *testing.T) {
		report := Analyze(amountTxs(5, 5, 5, 100), 0)
		for _, a := range report.Anomalies {
			if math.IsInf(a.ZScore, 0) || math.IsNaN(a.ZScore) {
				t.Fatalf("zScore = %v, want finite", a.ZScore)
			}
		}
		if _, err := json.Marshal(report); err != nil {
			t.Fatalf("marshal report: %v", err)
		}
	})

	t.Run("negative amounts use absolute value", func(t *testing.T) {
		got := DetectAnomalies(amountTxs(-10, -12, -11, -9, -500))
		if len(got) != 1 || got[0].Transaction.Valor != -500 {
			t.Fatalf("got %v, want the -500 transaction flagged", got)
		}
	})
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		z    float64
		want string
	}{
		{6, SeverityCritical},
		{4, SeverityHigh},
		{2.6, SeverityMedium},
		{1, SeverityLow},
	}
	for _, tt := range tests {
		if got := severityFor(tt.z); got != tt.want {
			t.Errorf("severityFor(%v) = %q, want %q", tt.z, got, tt.want)
		}
	}
}
