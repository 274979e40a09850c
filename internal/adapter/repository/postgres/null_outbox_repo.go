package postgres

import (
	"context"
	"time"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// NullOutboxRepository drops every event. It replaces the real outbox when
// OUTBOX_ENABLED is false; asset history is then always empty.
type NullOutboxRepository struct{}

func NewNullOutboxRepository() *NullOutboxRepository {
	return &NullOutboxRepository{}
}

func (NullOutboxRepository) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (NullOutboxRepository) GetUnpublished(context.Context, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (NullOutboxRepository) MarkPublished(context.Context, string, time.Time) error { return nil }

func (NullOutboxRepository) GetByAggregate(context.Context, string, string, int, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (NullOutboxRepository) DeletePublished(context.Context, time.Time) error { return nil }
