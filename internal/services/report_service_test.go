package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

func seedPeriod(t *testing.T, store storage.Store, userID string) {
	t.Helper()
	ctx := context.Background()

	gastos := []core.Gasto{
		{Descricao: "Supermercado Continente", Valor: 85.50, Categoria: core.CategoriaAlimentacao},
		{Descricao: "Netflix mensalidade", Valor: 15.99, Categoria: core.CategoriaAssinaturas},
		{Descricao: "Restaurante jantar", Valor: 42, Categoria: core.CategoriaLazer},
	}
	for i := range gastos {
		gastos[i].UserID = userID
		gastos[i].Data = time.Date(2025, 5, 3+i*7, 12, 0, 0, 0, time.UTC)
		gastos[i].Tipo = core.GastoVariavel
		if err := store.Gastos().Create(ctx, &gastos[i]); err != nil {
			t.Fatalf("seed gasto: %v", err)
		}
	}

	r := &core.Rendimento{
		UserID: userID,
		Fonte:  "Empresa XYZ",
		Valor:  2000,
		Tipo:   core.RendimentoSalario,
		Data:   time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC),
		IVA:    0.23,
	}
	if err := store.Rendimentos().Create(ctx, r); err != nil {
		t.Fatalf("seed rendimento: %v", err)
	}
}

func TestReportService_Generate(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReportService(store)
	ctx := context.Background()
	userID := "64f000000000000000000001"
	seedPeriod(t, store, userID)

	report, err := svc.Generate(ctx, userID, "mai", 2025)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(report.Report.Categorized) != 3 {
		t.Errorf("Categorized len = %d, want 3", len(report.Report.Categorized))
	}
	if report.Report.SavingsRate <= 0 {
		t.Errorf("SavingsRate = %v, want > 0 with income above expenses", report.Report.SavingsRate)
	}
	if report.Mes != "mai" || report.Ano != 2025 {
		t.Errorf("report period = %s/%d, want mai/2025", report.Mes, report.Ano)
	}

	stored, err := store.Reports().Get(ctx, userID, "mai", 2025)
	if err != nil {
		t.Fatalf("Reports().Get() error = %v", err)
	}
	if stored.ID == "" {
		t.Error("stored report should have an id")
	}

	// Regeneration replaces the same document.
	if _, err := svc.Generate(ctx, userID, "mai", 2025); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	again, err := store.Reports().Get(ctx, userID, "mai", 2025)
	if err != nil {
		t.Fatalf("Reports().Get() after regenerate error = %v", err)
	}
	if again.ID != stored.ID {
		t.Errorf("regenerated report id = %s, want %s", again.ID, stored.ID)
	}
}

func TestReportService_GetGeneratesOnMiss(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReportService(store)
	ctx := context.Background()
	userID := "64f000000000000000000001"
	seedPeriod(t, store, userID)

	report, err := svc.Get(ctx, userID, "mai", 2025)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(report.Report.Categorized) != 3 {
		t.Errorf("Categorized len = %d, want 3", len(report.Report.Categorized))
	}
}

type failingReports struct {
	storage.ReportStore
	getErr error
}

func (f failingReports) Get(ctx context.Context, userID, mes string, ano int) (*storage.InsightReport, error) {
	return nil, f.getErr
}

type reportErrStore struct {
	storage.Store
	reports storage.ReportStore
}

func (s reportErrStore) Reports() storage.ReportStore { return s.reports }

func TestReportService_GetPropagatesBackendError(t *testing.T) {
	mem := storage.NewMemoryStore()
	userID := "64f000000000000000000001"
	seedPeriod(t, mem, userID)

	backendErr := errors.New("connection reset")
	svc := NewReportService(reportErrStore{
		Store:   mem,
		reports: failingReports{ReportStore: mem.Reports(), getErr: backendErr},
	})

	_, err := svc.Get(context.Background(), userID, "mai", 2025)
	if !errors.Is(err, backendErr) {
		t.Fatalf("Get() error = %v, want wrapped %v", err, backendErr)
	}
}

func TestReportService_HandleEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReportService(store)
	ctx := context.Background()
	userID := "64f000000000000000000001"
	seedPeriod(t, store, userID)

	event := amqp.NewTransactionEvent(amqp.EntityGasto, amqp.ActionCreated, userID, "rec-1", "mai", 2025)
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if _, err := store.Reports().Get(ctx, userID, "mai", 2025); err != nil {
		t.Fatalf("report not materialized after event: %v", err)
	}
}

func TestReportService_HandleEventInvalidPeriod(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewReportService(store)
	ctx := context.Background()

	event := amqp.NewTransactionEvent(amqp.EntityGasto, amqp.ActionCreated, "64f000000000000000000001", "rec-1", "smarch", 2025)
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Errorf("HandleEvent() with invalid period should be dropped, got error %v", err)
	}
}
