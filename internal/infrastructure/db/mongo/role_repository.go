package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tunelar/backend/internal/core/domain"
)

const roleCollection = "roles"

// MongoRoleRepository implements ports.RoleRepository on MongoDB.
type MongoRoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *MongoRoleRepository {
	return &MongoRoleRepository{coll: db.Collection(roleCollection)}
}

type roleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
}

func (r *MongoRoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var doc roleDoc
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUnknownRole
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Description: doc.Description,
	}, nil
}

// Upsert creates the role if it does not exist yet. Safe under concurrent
// seeding: the upsert keyed by name plus the unique name index guarantee a
// single record per role.
func (r *MongoRoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	filter := bson.M{"name": role.Name}
	update := bson.M{"$setOnInsert": bson.M{
		"name":        role.Name,
		"description": role.Description,
	}}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		// A racing instance may trip the unique index inside the upsert
		// window; the role exists afterwards either way.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("upsert role: %w", err)
	}
	return nil
}
