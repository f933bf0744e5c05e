package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Coupon struct {
	ID                 bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Code               string        `bson:"code" json:"code"`
	DiscountPercentage int           `bson:"discountPercentage" json:"discountPercentage"`
	ExpirationDate     time.Time     `bson:"expirationDate" json:"expirationDate"`
	IsActive           bool          `bson:"isActive" json:"isActive"`
	AssignedUser       bson.ObjectID `bson:"assignedUser" json:"assignedUser"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ExpiredAt reports whether the coupon is past its expiration date at now.
func (c Coupon) ExpiredAt(now time.Time) bool {
	return !c.ExpirationDate.After(now)
}
