package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// RendimentoService orchestrates income writes across the store and AMQP.
type RendimentoService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewRendimentoService(store storage.Store, amqpClient *amqp.Client) *RendimentoService {
	return &RendimentoService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Create validates and persists an income record, then publishes a change event.
func (s *RendimentoService) Create(ctx context.Context, r *core.Rendimento) (*core.Rendimento, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Rendimentos().Create(ctx, r); err != nil {
		return nil, fmt.Errorf("save rendimento: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, r)
	return r, nil
}

// Update validates and replaces an income record, then publishes a change event.
func (s *RendimentoService) Update(ctx context.Context, userID, id string, in *core.Rendimento) (*core.Rendimento, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.Rendimentos().Update(ctx, userID, id, in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, amqp.ActionUpdated, updated)
	return updated, nil
}

// Delete soft deletes an income record and publishes a change event.
func (s *RendimentoService) Delete(ctx context.Context, userID, id string) error {
	r, err := s.store.Rendimentos().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Rendimentos().SoftDelete(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.ActionDeleted, r)
	return nil
}

func (s *RendimentoService) publish(ctx context.Context, action string, r *core.Rendimento) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping transaction event")
		return
	}

	event := amqp.NewTransactionEvent(amqp.EntityRendimento, action, r.UserID, r.ID, r.Mes, r.Ano)
	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		// Don't fail the request, the record is already persisted.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"entity", amqp.EntityRendimento,
			"action", action,
			"record_id", r.ID,
			"error", err)
	}
}
