package services

import (
	"context"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/storage"
)

func newTestProcessor(store storage.Store) *RecurringProcessor {
	gastos := NewGastoService(store, nil)
	rendimentos := NewRendimentoService(store, nil)
	return NewRecurringProcessor(store, gastos, rendimentos, time.Hour)
}

func TestRecurringProcessor_MaterializesMonthlyTemplate(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := newTestProcessor(store)
	ctx := context.Background()
	userID := "64f000000000000000000001"

	tmpl := &core.Gasto{
		UserID:     userID,
		Descricao:  "Renda do apartamento",
		Valor:      800,
		Categoria:  core.CategoriaCasa,
		Data:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Tipo:       core.GastoFixo,
		Recorrente: true,
		Recorrencia: &core.Recorrencia{
			Tipo:           "mensal",
			Dia:            10,
			Ativo:          true,
			UltimaExecucao: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := store.Gastos().Create(ctx, tmpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	now := time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC)
	processed, err := proc.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if processed != 1 {
		t.Fatalf("ProcessDue() = %d, want 1", processed)
	}

	occurrences, err := store.Gastos().ListByPeriod(ctx, userID, "fev", 2025)
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("len(occurrences) = %d, want 1", len(occurrences))
	}
	occ := occurrences[0]
	if occ.Recorrente {
		t.Error("materialized occurrence should not itself be recurring")
	}
	if occ.Valor != 800 || occ.Descricao != "Renda do apartamento" {
		t.Errorf("occurrence = %q %v, want template values", occ.Descricao, occ.Valor)
	}

	// Second run in the same month must be a no-op.
	processed, err = proc.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("second ProcessDue() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("second ProcessDue() = %d, want 0", processed)
	}
}

func TestRecurringProcessor_WeeklyRendimento(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := newTestProcessor(store)
	ctx := context.Background()
	userID := "64f000000000000000000001"

	tmpl := &core.Rendimento{
		UserID:     userID,
		Fonte:      "Aulas particulares",
		Valor:      100,
		Tipo:       core.RendimentoFreelance,
		Data:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		IVA:        0.23,
		Recorrente: true,
		Recorrencia: &core.Recorrencia{
			Tipo:           "semanal",
			Ativo:          true,
			UltimaExecucao: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := store.Rendimentos().Create(ctx, tmpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	processed, err := proc.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if processed != 1 {
		t.Fatalf("ProcessDue() = %d, want 1", processed)
	}

	records, err := store.Rendimentos().ListByPeriod(ctx, userID, "mar", 2025)
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}
	// Template plus one occurrence, both dated March.
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	var occ *core.Rendimento
	for i := range records {
		if !records[i].Recorrente {
			occ = &records[i]
		}
	}
	if occ == nil {
		t.Fatal("no materialized occurrence found")
	}
	if occ.ValorLiquido != 77 {
		t.Errorf("occurrence ValorLiquido = %v, want 77", occ.ValorLiquido)
	}

	// 3 days later the weekly template is not due yet.
	processed, err = proc.ProcessDue(ctx, now.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("second ProcessDue() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("second ProcessDue() = %d, want 0", processed)
	}
}

func TestRecurringProcessor_IgnoresInactiveTemplates(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := newTestProcessor(store)
	ctx := context.Background()

	tmpl := &core.Gasto{
		UserID:     "64f000000000000000000001",
		Descricao:  "Assinatura antiga",
		Valor:      9.99,
		Categoria:  core.CategoriaAssinaturas,
		Data:       time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Tipo:       core.GastoFixo,
		Recorrente: true,
		Recorrencia: &core.Recorrencia{
			Tipo:  "mensal",
			Dia:   5,
			Ativo: false,
		},
	}
	if err := store.Gastos().Create(ctx, tmpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	processed, err := proc.ProcessDue(ctx, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("ProcessDue() = %d, want 0 for inactive template", processed)
	}
}

func TestRecurringProcessor_StartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := newTestProcessor(store)
	ctx := context.Background()

	if err := proc.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !proc.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := proc.Start(ctx); err == nil {
		t.Error("second Start() should fail while running")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := proc.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if proc.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
