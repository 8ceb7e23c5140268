package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/core"
	"financas/internal/storage"
)

// RecurringProcessor materializes due recurring templates into concrete
// expense and income records. A template is a record flagged Recorrente with
// an active Recorrencia; the processor stamps UltimaExecucao after each
// materialization so a template fires at most once per period.
type RecurringProcessor struct {
	store       storage.Store
	gastos      *GastoService
	rendimentos *RendimentoService
	interval    time.Duration

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRecurringProcessor creates a new recurring template processor.
func NewRecurringProcessor(store storage.Store, gastos *GastoService, rendimentos *RendimentoService, interval time.Duration) *RecurringProcessor {
	return &RecurringProcessor{
		store:       store,
		gastos:      gastos,
		rendimentos: rendimentos,
		interval:    interval,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *RecurringProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("recurring processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Recurring processor started", "interval", p.interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RecurringProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Recurring processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *RecurringProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RecurringProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Process immediately on startup
	if _, err := p.ProcessDue(ctx, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessDue(ctx, time.Now().UTC()); err != nil {
				slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
			}
		}
	}
}

// ProcessDue materializes every template due at now and returns how many
// records were created. Gasto and rendimento templates are independent, so
// the two passes run concurrently.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.gastos == nil || p.rendimentos == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	var (
		gastosProcessed, rendimentosProcessed int
		gastoTemplates                        int
		rendTemplates                         int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		templates, err := p.store.Gastos().ListRecurring(gctx)
		if err != nil {
			return fmt.Errorf("list recurring gastos: %w", err)
		}
		gastoTemplates = len(templates)
		for _, tmpl := range templates {
			if p.processGasto(gctx, tmpl, now) {
				gastosProcessed++
			}
		}
		return nil
	})
	g.Go(func() error {
		templates, err := p.store.Rendimentos().ListRecurring(gctx)
		if err != nil {
			return fmt.Errorf("list recurring rendimentos: %w", err)
		}
		rendTemplates = len(templates)
		for _, tmpl := range templates {
			if p.processRendimento(gctx, tmpl, now) {
				rendimentosProcessed++
			}
		}
		return nil
	})

	err := g.Wait()
	processed := gastosProcessed + rendimentosProcessed
	if err != nil {
		return processed, err
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"gasto_templates", gastoTemplates,
		"rendimento_templates", rendTemplates,
		"processing_date", now.Format("2006-01-02"))

	return processed, nil
}

func (p *RecurringProcessor) processGasto(ctx context.Context, tmpl core.Gasto, now time.Time) bool {
	due, err := p.isDue(tmpl.Recorrencia, tmpl.Data, now)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check dueness",
			"template_id", tmpl.ID, "error", err)
		return false
	}
	if !due {
		return false
	}

	occurrence := tmpl
	occurrence.ID = ""
	occurrence.Data = now
	occurrence.Recorrente = false
	occurrence.Recorrencia = nil

	if _, err := p.gastos.Create(ctx, &occurrence); err != nil {
		slog.ErrorContext(ctx, "Failed to create gasto from template",
			"template_id", tmpl.ID,
			"descricao", tmpl.Descricao,
			"error", err)
		return false
	}

	p.stampGasto(ctx, tmpl, now)

	slog.InfoContext(ctx, "Created gasto from recurring template",
		"template_id", tmpl.ID,
		"descricao", tmpl.Descricao,
		"valor", tmpl.Valor,
		"frequency", recurrenceTipo(tmpl.Recorrencia))
	return true
}

func (p *RecurringProcessor) processRendimento(ctx context.Context, tmpl core.Rendimento, now time.Time) bool {
	due, err := p.isDue(tmpl.Recorrencia, tmpl.Data, now)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check dueness",
			"template_id", tmpl.ID, "error", err)
		return false
	}
	if !due {
		return false
	}

	occurrence := tmpl
	occurrence.ID = ""
	occurrence.Data = now
	occurrence.Recorrente = false
	occurrence.Recorrencia = nil

	if _, err := p.rendimentos.Create(ctx, &occurrence); err != nil {
		slog.ErrorContext(ctx, "Failed to create rendimento from template",
			"template_id", tmpl.ID,
			"fonte", tmpl.Fonte,
			"error", err)
		return false
	}

	p.stampRendimento(ctx, tmpl, now)

	slog.InfoContext(ctx, "Created rendimento from recurring template",
		"template_id", tmpl.ID,
		"fonte", tmpl.Fonte,
		"valor", tmpl.Valor,
		"frequency", recurrenceTipo(tmpl.Recorrencia))
	return true
}

func (p *RecurringProcessor) isDue(rec *core.Recorrencia, anchor time.Time, now time.Time) (bool, error) {
	if rec == nil {
		return false, nil
	}
	checker, err := GetDuenessChecker(rec.Tipo)
	if err != nil {
		return false, err
	}
	return checker.IsDue(rec.UltimaExecucao, now, anchor, rec.Dia), nil
}

func (p *RecurringProcessor) stampGasto(ctx context.Context, tmpl core.Gasto, now time.Time) {
	rec := *tmpl.Recorrencia
	rec.UltimaExecucao = now
	tmpl.Recorrencia = &rec

	if _, err := p.store.Gastos().Update(ctx, tmpl.UserID, tmpl.ID, &tmpl); err != nil {
		// Continue anyway, the occurrence was created; the template may
		// fire again next cycle.
		slog.ErrorContext(ctx, "Failed to stamp template execution",
			"template_id", tmpl.ID, "error", err)
	}
}

func (p *RecurringProcessor) stampRendimento(ctx context.Context, tmpl core.Rendimento, now time.Time) {
	rec := *tmpl.Recorrencia
	rec.UltimaExecucao = now
	tmpl.Recorrencia = &rec

	if _, err := p.store.Rendimentos().Update(ctx, tmpl.UserID, tmpl.ID, &tmpl); err != nil {
		slog.ErrorContext(ctx, "Failed to stamp template execution",
			"template_id", tmpl.ID, "error", err)
	}
}

func recurrenceTipo(rec *core.Recorrencia) string {
	if rec == nil {
		return ""
	}
	return rec.Tipo
}
