package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

const usersCollection = "users"

// UserRepository stores accounts with their roles embedded.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

type mongoRoleRef struct {
	ID   string `bson:"id,omitempty"`
	Name string `bson:"name"`
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Username              string             `bson:"username"`
	UsernameLower         string             `bson:"username_lower"`
	PasswordHash          string             `bson:"password_hash"`
	Roles                 []mongoRoleRef     `bson:"roles"`
	AccountNonExpired     bool               `bson:"account_non_expired"`
	AccountNonLocked      bool               `bson:"account_non_locked"`
	CredentialsNonExpired bool               `bson:"credentials_non_expired"`
	Enabled               bool               `bson:"enabled"`
	CreatedAt             time.Time          `bson:"created_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	roles := make([]mongoRoleRef, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, mongoRoleRef{ID: r.ID, Name: r.Name})
	}
	return mongoUser{
		Username:              u.Username,
		UsernameLower:         domain.NormalizeUsername(u.Username),
		PasswordHash:          u.PasswordHash,
		Roles:                 roles,
		AccountNonExpired:     u.AccountNonExpired,
		AccountNonLocked:      u.AccountNonLocked,
		CredentialsNonExpired: u.CredentialsNonExpired,
		Enabled:               u.Enabled,
		CreatedAt:             u.CreatedAt.UTC(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	roles := make([]domain.Role, 0, len(mu.Roles))
	for _, r := range mu.Roles {
		roles = append(roles, domain.Role{ID: r.ID, Name: r.Name})
	}
	return &domain.User{
		ID:                    mu.ID.Hex(),
		Username:              mu.Username,
		PasswordHash:          mu.PasswordHash,
		Roles:                 roles,
		AccountNonExpired:     mu.AccountNonExpired,
		AccountNonLocked:      mu.AccountNonLocked,
		CredentialsNonExpired: mu.CredentialsNonExpired,
		Enabled:               mu.Enabled,
		CreatedAt:             mu.CreatedAt.UTC(),
	}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var mu mongoUser
	filter := bson.M{"username_lower": domain.NormalizeUsername(username)}
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.coll.InsertOne(ctx, toMongoUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	doc := toMongoUser(user)
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrUserNotFound
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
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

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}
