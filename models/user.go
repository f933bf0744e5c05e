package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type CartItem struct {
	ProductID bson.ObjectID `bson:"product" json:"product"`
	Quantity  int           `bson:"quantity" json:"quantity"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	CartItems    Cart          `bson:"cartItems" json:"cartItems"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the public projection of a User. It has no password field,
// so it is the only account shape handlers ever serialize.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CartItems Cart      `json:"cartItems"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewProfile(u *User) Profile {
	cart := u.CartItems
	if cart == nil {
		cart = Cart{}
	}
	return Profile{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CartItems: cart,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
