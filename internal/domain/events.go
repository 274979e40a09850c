package domain

import "time"

// Event types
const (
	EventTypeAssetRegistered    = "asset.registered"
	EventTypeAssetCapitalized   = "asset.capitalized"
	EventTypeDepreciationPosted = "depreciation.posted"
	EventTypeAssetDisposed      = "asset.disposed"
	EventTypeAssetStatusChanged = "asset.status_changed"
	EventTypeAssetsRecalculated = "assets.recalculated"
)

// Aggregate types
const (
	AggregateTypeAsset        = "asset"
	AggregateTypeOrganisation = "organisation"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent builds an unpublished event for an aggregate.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	}
}
