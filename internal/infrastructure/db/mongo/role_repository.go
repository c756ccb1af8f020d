package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

const rolesCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

type mongoRole struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	NameLower string             `bson:"name_lower"`
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var mr mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"name_lower": domain.NewRole(name).Key()}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: mr.ID.Hex(), Name: mr.Name}, nil
}

// Create inserts role. Losing a race against a concurrent insert of the
// same name resolves to the stored record.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	res, err := r.coll.InsertOne(ctx, mongoRole{Name: role.Name, NameLower: role.Key()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, findErr := r.FindByName(ctx, role.Name)
			if findErr != nil {
				return findErr
			}
			*role = *existing
			return nil
		}
		return fmt.Errorf("insert role: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		role.ID = oid.Hex()
	}
	return nil
}
