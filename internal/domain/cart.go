package domain

import "time"

// Cart is the owner-keyed aggregate. Total is derived from Items and must be
// recomputed before every persist; it is never set independently.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"userId"`
	IsGuest   bool       `bson:"is_guest" json:"isGuest"`
	Items     []CartItem `bson:"items" json:"items"`
	Total     float64    `bson:"total" json:"total"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

// CartItem is one product entry. Name, Price and Image are snapshots taken
// when the item was added; later catalog changes do not touch them.
type CartItem struct {
	ID        string    `bson:"item_id" json:"id"`
	ProductID int64     `bson:"product_id" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

func NewCart(owner Owner) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    owner.ID,
		IsGuest:   owner.Guest,
		Items:     []CartItem{},
		Total:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecalculateTotal restores the invariant total == Σ price*quantity.
func (c *Cart) RecalculateTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.Total = total
}

// AddItem merges the given item into the cart. An existing line with the
// same product id has its quantity incremented and keeps its original
// snapshot; otherwise the item is appended as a new line.
func (c *Cart) AddItem(item CartItem) {
	if line := c.FindItem(item.ProductID); line != nil {
		line.Quantity += item.Quantity
		c.RecalculateTotal()
		return
	}
	c.Items = append(c.Items, item)
	c.RecalculateTotal()
}

// SetItemQuantity sets the line's quantity absolutely. Returns false when no
// line with the given id exists.
func (c *Cart) SetItemQuantity(itemID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.RecalculateTotal()
			return true
		}
	}
	return false
}

// RemoveItem removes the line with the given id. Removing an id that is not
// present leaves the cart unchanged; removal is idempotent.
func (c *Cart) RemoveItem(itemID string) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.RecalculateTotal()
}

// Clear empties the item list and zeroes the total.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Total = 0
}

// MergeFrom folds a guest cart into this cart. Quantities combine on
// matching product ids and this cart's price snapshot wins; unmatched guest
// lines are carried over as-is. The cart stops being a guest cart.
func (c *Cart) MergeFrom(guest *Cart) {
	for _, guestItem := range guest.Items {
		if line := c.FindItem(guestItem.ProductID); line != nil {
			line.Quantity += guestItem.Quantity
		} else {
			c.Items = append(c.Items, guestItem)
		}
	}
	c.IsGuest = false
	c.RecalculateTotal()
}

// FindItem returns the line for the given product id, or nil.
func (c *Cart) FindItem(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
