package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/princinho/storefront/database"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
)

// CouponRepository stores per-account coupons.
type CouponRepository struct {
	col *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: db.Collection(database.CouponsCollection)}
}

func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if utils.IsDuplicateKey(err) {
			return models.ErrDuplicate
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// FindActiveForUser returns the user's active coupon that expires after now.
func (r *CouponRepository) FindActiveForUser(ctx context.Context, userID string, now time.Time) (*models.Coupon, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return r.findOne(ctx, bson.M{
		"assignedUser":   oid,
		"isActive":       true,
		"expirationDate": bson.M{"$gt": now},
	})
}

// FindActiveByCode returns the user's active coupon with code, expired or not.
func (r *CouponRepository) FindActiveByCode(ctx context.Context, userID, code string) (*models.Coupon, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"code": code, "assignedUser": oid, "isActive": true})
}

func (r *CouponRepository) Deactivate(ctx context.Context, id bson.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("deactivate coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) findOne(ctx context.Context, filter bson.M) (*models.Coupon, error) {
	var c models.Coupon
	err := r.col.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return &c, nil
}
