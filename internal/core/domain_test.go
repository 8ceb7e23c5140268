package core

import (
	"math"
	"strings"
	"testing"
	"time"
)

func validGasto() Gasto {
	return Gasto{
		UserID:    "u1",
		Descricao: "Groceries",
		Valor:     50,
		Categoria: CategoriaAlimentacao,
		Data:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Tipo:      GastoVariavel,
	}
}

func TestGastoDerivePeriod(t *testing.T) {
	tests := []struct {
		date    time.Time
		wantMes string
		wantAno int
	}{
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "jan", 2025},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "fev", 2024},
		{time.Date(2025, 11, 1, 23, 59, 0, 0, time.UTC), "nov", 2025},
		{time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC), "dez", 2030},
	}

	for _, tt := range tests {
		g := validGasto()
		g.Data = tt.date
		g.DerivePeriod()
		if g.Mes != tt.wantMes || g.Ano != tt.wantAno {
			t.Errorf("DerivePeriod(%v) = (%s, %d), want (%s, %d)", tt.date, g.Mes, g.Ano, tt.wantMes, tt.wantAno)
		}
	}
}

func TestRendimentoApplyIVA(t *testing.T) {
	r := Rendimento{Fonte: "Job", Valor: 1000, IVA: 0.23}
	r.ApplyIVA()
	if math.Abs(r.ValorLiquido-770) > 1e-9 {
		t.Errorf("ValorLiquido = %v, want 770", r.ValorLiquido)
	}

	// Changing either input and re-applying must recompute.
	r.IVA = 0
	r.ApplyIVA()
	if r.ValorLiquido != 1000 {
		t.Errorf("ValorLiquido after iva=0 = %v, want 1000", r.ValorLiquido)
	}
	r.Valor = 500
	r.ApplyIVA()
	if r.ValorLiquido != 500 {
		t.Errorf("ValorLiquido after valor=500 = %v, want 500", r.ValorLiquido)
	}
}

func TestGastoValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := validGasto()
		if err := g.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("recurrence day zero falls back to the record date", func(t *testing.T) {
		g := validGasto()
		g.Recorrencia = &Recorrencia{Tipo: "mensal", Dia: 0, Ativo: true}
		if err := g.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Gasto)
		field  string
	}{
		{"empty description", func(g *Gasto) { g.Descricao = "  " }, "descricao"},
		{"long description", func(g *Gasto) { g.Descricao = strings.Repeat("x", 201) }, "descricao"},
		{"negative amount", func(g *Gasto) { g.Valor = -1 }, "valor"},
		{"amount over cap", func(g *Gasto) { g.Valor = 1_000_001 }, "valor"},
		{"bad category", func(g *Gasto) { g.Categoria = "viagens" }, "categoria"},
		{"zero date", func(g *Gasto) { g.Data = time.Time{} }, "data"},
		{"year below window", func(g *Gasto) { g.Data = time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC) }, "ano"},
		{"year above window", func(g *Gasto) { g.Data = time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC) }, "ano"},
		{"bad type", func(g *Gasto) { g.Tipo = "mensal" }, "tipo"},
		{"long tag", func(g *Gasto) { g.Tags = []string{strings.Repeat("t", 21)} }, "tags"},
		{"bad status", func(g *Gasto) { g.Status = "apagado" }, "status"},
		{"bad recurrence type", func(g *Gasto) { g.Recorrencia = &Recorrencia{Tipo: "diaria"} }, "recorrencia.tipo"},
		{"negative recurrence day", func(g *Gasto) { g.Recorrencia = &Recorrencia{Tipo: "mensal", Dia: -1} }, "recorrencia.dia"},
		{"recurrence day over 31", func(g *Gasto) { g.Recorrencia = &Recorrencia{Tipo: "mensal", Dia: 32} }, "recorrencia.dia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGasto()
			tt.mutate(&g)
			err := g.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !IsValidation(err) {
				t.Fatalf("error %v is not a validation error", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention field %q", err, tt.field)
			}
		})
	}
}

func TestRendimentoValidate(t *testing.T) {
	valid := func() Rendimento {
		return Rendimento{
			UserID: "u1",
			Fonte:  "Job",
			Valor:  1000,
			Tipo:   RendimentoSalario,
			IVA:    0.23,
			Data:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	v := valid()
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	r := valid()
	r.Fonte = ""
	r.IVA = 1.5
	err := r.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	// Both violations must be reported together.
	if !strings.Contains(err.Error(), "fonte") || !strings.Contains(err.Error(), "iva") {
		t.Errorf("error %q should name both fonte and iva", err)
	}
}

func TestMesHelpers(t *testing.T) {
	if got := MesNumber("nov"); got != 11 {
		t.Errorf("MesNumber(nov) = %d, want 11", got)
	}
	// Locale variants with a trailing dot map to the same period.
	if got := MesNumber("nov."); got != 11 {
		t.Errorf("MesNumber(nov.) = %d, want 11", got)
	}
	if got := MesNumber("xyz"); got != 0 {
		t.Errorf("MesNumber(xyz) = %d, want 0", got)
	}
	if !ValidMes("Jan") {
		t.Error("ValidMes(Jan) = false, want true")
	}
	if ValidMes("janeiro") {
		t.Error("ValidMes(janeiro) = true, want false")
	}
}
