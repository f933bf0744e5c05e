// Package memstore provides in-memory account, product and coupon stores
// with the same behavior as the MongoDB repositories.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/storefront/models"
)

type Users struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[bson.ObjectID]models.User{}}
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.CartItems == nil {
		u.CartItems = models.Cart{}
	}
	s.byID[u.ID] = copyUser(*u)
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (s *Users) UpdatePassword(_ context.Context, id string, hash string) error {
	return s.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (s *Users) SetCart(_ context.Context, id string, cart models.Cart) error {
	return s.update(id, func(u *models.User) {
		u.CartItems = append(models.Cart{}, cart...)
	})
}

func (s *Users) SetRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	if err := s.update(id, func(u *models.User) { u.Role = role }); err != nil {
		return nil, err
	}
	return s.FindByID(context.Background(), id)
}

func (s *Users) update(id string, fn func(*models.User)) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[oid]
	if !ok {
		return models.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	s.byID[oid] = u
	return nil
}

func copyUser(u models.User) models.User {
	u.CartItems = append(models.Cart{}, u.CartItems...)
	return u
}

type Products struct {
	mu    sync.RWMutex
	byID  map[bson.ObjectID]models.Product
	Reads int
}

func NewProducts(seed ...models.Product) *Products {
	s := &Products{byID: map[bson.ObjectID]models.Product{}}
	for _, p := range seed {
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}
		s.byID[p.ID] = p
	}
	return s
}

func (s *Products) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Slug == p.Slug {
			return models.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *Products) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Products) FindActiveByIDs(_ context.Context, ids []bson.ObjectID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Products) ListActive(_ context.Context) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.IsActive }), nil
}

// ListFeatured counts each call in Reads so tests can tell cache hits apart.
func (s *Products) ListFeatured(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()
	return s.filter(func(p models.Product) bool { return p.IsActive && p.IsFeatured }), nil
}

func (s *Products) SetFeatured(_ context.Context, id string, featured bool) (*models.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.IsFeatured = featured
	p.UpdatedAt = time.Now().UTC()
	s.byID[oid] = p
	return &p, nil
}

func (s *Products) Delete(_ context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[oid]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, oid)
	return nil
}

// SetActive flips a product's active flag without touching any cache.
func (s *Products) SetActive(id bson.ObjectID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byID[id]; ok {
		p.IsActive = active
		s.byID[id] = p
	}
}

func (s *Products) filter(keep func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0)
	for _, p := range s.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Coupons struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]models.Coupon
}

func NewCoupons(seed ...models.Coupon) *Coupons {
	s := &Coupons{byID: map[bson.ObjectID]models.Coupon{}}
	for _, c := range seed {
		if c.ID.IsZero() {
			c.ID = bson.NewObjectID()
		}
		s.byID[c.ID] = c
	}
	return s
}

func (s *Coupons) Create(_ context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Code == c.Code || existing.AssignedUser == c.AssignedUser {
			return models.ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *Coupons) FindActiveForUser(_ context.Context, userID string, now time.Time) (*models.Coupon, error) {
	return s.find(userID, func(c models.Coupon) bool { return c.IsActive && c.ExpirationDate.After(now) })
}

func (s *Coupons) FindActiveByCode(_ context.Context, userID, code string) (*models.Coupon, error) {
	return s.find(userID, func(c models.Coupon) bool { return c.IsActive && c.Code == code })
}

func (s *Coupons) Deactivate(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byID[id]; ok {
		c.IsActive = false
		s.byID[id] = c
	}
	return nil
}

// Get returns the stored coupon by id.
func (s *Coupons) Get(id bson.ObjectID) (models.Coupon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

func (s *Coupons) find(userID string, match func(models.Coupon) bool) (*models.Coupon, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.byID {
		if c.AssignedUser == oid && match(c) {
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}
