package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tunelar/backend/internal/core/domain"
)

const userCollection = "users"

// MongoUserRepository implements ports.UserRepository on MongoDB. Role
// membership is embedded in the user document; the unique indexes on
// username and email enforce global uniqueness under concurrency.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

type mongoRole struct {
	ID          string `bson:"id,omitempty"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"password_hash"`
	Bio            string             `bson:"bio,omitempty"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
	Roles          []mongoRole        `bson:"roles"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	roles := make([]mongoRole, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, mongoRole{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return mongoUser{
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Roles:          roles,
		CreatedAt:      u.CreatedAt.Unix(),
		UpdatedAt:      u.UpdatedAt.Unix(),
	}
}

func (mu *mongoUser) toDomain() *domain.User {
	roles := make([]domain.Role, 0, len(mu.Roles))
	for _, r := range mu.Roles {
		roles = append(roles, domain.Role{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return &domain.User{
		ID:             mu.ID.Hex(),
		Name:           mu.Name,
		Username:       mu.Username,
		Email:          mu.Email,
		PasswordHash:   mu.PasswordHash,
		Bio:            mu.Bio,
		ProfilePicture: mu.ProfilePicture,
		Roles:          roles,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.coll.InsertOne(ctx, toMongoUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, alias string) (*domain.User, error) {
	user, err := r.FindByUsername(ctx, alias)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"email": alias})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *mu.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := toMongoUser(user)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":            doc.Name,
		"username":        doc.Username,
		"email":           doc.Email,
		"password_hash":   doc.PasswordHash,
		"bio":             doc.Bio,
		"profile_picture": doc.ProfilePicture,
		"roles":           doc.Roles,
		"updated_at":      doc.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
