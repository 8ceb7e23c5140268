package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/insight"
	"financas/internal/storage"
)

// ReportService recomputes and materializes a user's monthly insight report.
// The worker drives it from transaction events; the HTTP layer falls back to
// Generate when no materialized report exists yet.
type ReportService struct {
	store storage.Store
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// Generate runs the insight engine over one user period and upserts the
// resulting report.
func (s *ReportService) Generate(ctx context.Context, userID, mes string, ano int) (*storage.InsightReport, error) {
	mes = core.NormalizeMes(mes)

	gastos, err := s.store.Gastos().ListByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, fmt.Errorf("list gastos for report: %w", err)
	}

	gross, _, err := s.store.Rendimentos().TotalByPeriod(ctx, userID, mes, ano)
	if err != nil {
		return nil, fmt.Errorf("total rendimentos for report: %w", err)
	}

	txs := make([]insight.Transaction, len(gastos))
	for i, g := range gastos {
		txs[i] = insight.Transaction{
			Descricao: g.Descricao,
			Valor:     g.Valor,
			Data:      g.Data,
			Categoria: string(g.Categoria),
		}
	}

	report := &storage.InsightReport{
		UserID:      userID,
		Mes:         mes,
		Ano:         ano,
		Report:      insight.Analyze(txs, gross),
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.store.Reports().Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("upsert report: %w", err)
	}

	slog.InfoContext(ctx, "Generated insight report",
		"user_id", userID,
		"mes", mes,
		"ano", ano,
		"transactions", len(txs))

	return report, nil
}

// Get returns the materialized report for a period, generating it on the fly
// when none exists yet.
func (s *ReportService) Get(ctx context.Context, userID, mes string, ano int) (*storage.InsightReport, error) {
	mes = core.NormalizeMes(mes)
	report, err := s.store.Reports().Get(ctx, userID, mes, ano)
	switch {
	case err == nil:
		return report, nil
	case errors.Is(err, core.ErrNotFound):
		return s.Generate(ctx, userID, mes, ano)
	default:
		return nil, fmt.Errorf("get report: %w", err)
	}
}

// HandleEvent recomputes the report for the period a transaction event
// touched. Events with an unknown period are dropped, not requeued.
func (s *ReportService) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if !core.ValidMes(event.Mes) || event.UserID == "" {
		slog.WarnContext(ctx, "Dropping event with invalid period",
			"message_id", event.MessageID,
			"mes", event.Mes,
			"ano", event.Ano)
		return nil
	}

	_, err := s.Generate(ctx, event.UserID, event.Mes, event.Ano)
	return err
}
