package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// GastoService orchestrates expense writes across the store and AMQP.
// Publishing is best effort: a broker outage never fails the request.
type GastoService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewGastoService(store storage.Store, amqpClient *amqp.Client) *GastoService {
	return &GastoService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Create validates and persists an expense, then publishes a change event.
func (s *GastoService) Create(ctx context.Context, g *core.Gasto) (*core.Gasto, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Gastos().Create(ctx, g); err != nil {
		return nil, fmt.Errorf("save gasto: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, g)
	return g, nil
}

// Update validates and replaces an expense, then publishes a change event.
func (s *GastoService) Update(ctx context.Context, userID, id string, in *core.Gasto) (*core.Gasto, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.Gastos().Update(ctx, userID, id, in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, amqp.ActionUpdated, updated)
	return updated, nil
}

// Delete soft deletes an expense and publishes a change event carrying the
// period the record belonged to.
func (s *GastoService) Delete(ctx context.Context, userID, id string) error {
	g, err := s.store.Gastos().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Gastos().SoftDelete(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.ActionDeleted, g)
	return nil
}

func (s *GastoService) publish(ctx context.Context, action string, g *core.Gasto) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping transaction event")
		return
	}

	event := amqp.NewTransactionEvent(amqp.EntityGasto, action, g.UserID, g.ID, g.Mes, g.Ano)
	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		// Don't fail the request, the record is already persisted.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"entity", amqp.EntityGasto,
			"action", action,
			"record_id", g.ID,
			"error", err)
	}
}
