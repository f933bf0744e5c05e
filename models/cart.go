package models

import "go.mongodb.org/mongo-driver/v2/bson"

// Cart is the ordered list of items embedded in a User document.
type Cart []CartItem

// Add increments the quantity of the first line for productID, or appends
// a new line with quantity 1.
func (c Cart) Add(productID bson.ObjectID) Cart {
	out := c.clone()
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, CartItem{ProductID: productID, Quantity: 1})
}

// RemoveAll drops every line referencing productID.
func (c Cart) RemoveAll(productID bson.ObjectID) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity sets the quantity of the line for productID. A quantity of
// zero removes the line. ok is false when no line references productID.
func (c Cart) SetQuantity(productID bson.ObjectID, quantity int) (out Cart, ok bool) {
	if !c.Contains(productID) {
		return c.clone(), false
	}
	if quantity == 0 {
		return c.RemoveAll(productID), true
	}
	out = c.clone()
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
		}
	}
	return out, true
}

func (c Cart) Contains(productID bson.ObjectID) bool {
	for _, item := range c {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ProductIDs returns the distinct product references in cart order.
func (c Cart) ProductIDs() []bson.ObjectID {
	seen := make(map[bson.ObjectID]struct{}, len(c))
	ids := make([]bson.ObjectID, 0, len(c))
	for _, item := range c {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Quantities sums quantities per product.
func (c Cart) Quantities() map[bson.ObjectID]int {
	q := make(map[bson.ObjectID]int, len(c))
	for _, item := range c {
		q[item.ProductID] += item.Quantity
	}
	return q
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
