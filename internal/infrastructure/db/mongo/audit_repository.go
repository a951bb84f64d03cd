package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tunelar/backend/internal/core/domain"
)

const auditCollection = "audit_events"

// MongoAuditRepository persists audit events. Append-only; events are never
// updated or deleted by the application.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Actor      string `bson:"actor"`
	Action     string `bson:"action"`
	Target     string `bson:"target,omitempty"`
	Detail     string `bson:"detail,omitempty"`
	OccurredAt int64  `bson:"occurred_at"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDoc{
		Actor:      event.Actor,
		Action:     event.Action,
		Target:     event.Target,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
