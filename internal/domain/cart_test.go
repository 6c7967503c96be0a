package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, productID int64, price float64, qty int) CartItem {
	return CartItem{
		ID:        id,
		ProductID: productID,
		Name:      "product",
		Price:     price,
		Quantity:  qty,
		AddedAt:   time.Now(),
	}
}

func TestNewCart_EmptyGuest(t *testing.T) {
	cart := NewCart(GuestOwner("session-1"))

	assert.Equal(t, "session-1", cart.UserID)
	assert.True(t, cart.IsGuest)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
}

func TestAddItem_NewLine(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 10.0, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.Total)
}

func TestAddItem_SameProductIsAdditive(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 10.0, 2))
	cart.AddItem(item("b", 1, 10.0, 3))

	require.Len(t, cart.Items, 1, "same product must merge into one line")
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.Total)
}

func TestAddItem_KeepsOriginalSnapshot(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 10.0, 1))

	// Second add carries a different price; the first snapshot wins.
	cart.AddItem(item("b", 1, 99.0, 1))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, 20.0, cart.Total)
}

func TestFindItem(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 10.0, 2))

	line := cart.FindItem(1)
	require.NotNil(t, line)
	assert.Equal(t, "a", line.ID)
	assert.Equal(t, 2, line.Quantity)

	assert.Nil(t, cart.FindItem(99))
}

func TestSetItemQuantity_Absolute(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 5.0, 4))

	ok := cart.SetItemQuantity("a", 2)
	require.True(t, ok)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 10.0, cart.Total)
}

func TestSetItemQuantity_UnknownItem(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 5.0, 1))

	ok := cart.SetItemQuantity("missing", 2)
	assert.False(t, ok)
	assert.Equal(t, 5.0, cart.Total)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.AddItem(item("a", 1, 10.0, 1))
	cart.AddItem(item("b", 2, 5.0, 2))

	cart.RemoveItem("a")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 10.0, cart.Total)

	// Removing the same id again changes nothing.
	cart.RemoveItem("a")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 10.0, cart.Total)
}

func TestClear_EmptyCartIsNoOp(t *testing.T) {
	cart := NewCart(GuestOwner("s"))
	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
}

func TestMergeFrom_CombinesQuantitiesAndPreservesTargetSnapshot(t *testing.T) {
	target := NewCart(AuthenticatedOwner("user-1"))
	target.AddItem(item("t1", 1, 10.0, 1))

	guest := NewCart(GuestOwner("session-1"))
	guest.AddItem(item("g1", 1, 10.0, 2))
	guest.AddItem(item("g2", 2, 5.0, 1))

	target.MergeFrom(guest)

	require.Len(t, target.Items, 2)
	assert.Equal(t, int64(1), target.Items[0].ProductID)
	assert.Equal(t, 3, target.Items[0].Quantity)
	assert.Equal(t, "t1", target.Items[0].ID, "target line id wins")
	assert.Equal(t, int64(2), target.Items[1].ProductID)
	assert.Equal(t, 1, target.Items[1].Quantity)
	assert.Equal(t, 35.0, target.Total)
	assert.False(t, target.IsGuest)
}

func TestMergeFrom_EmptyGuestClearsGuestFlagOnly(t *testing.T) {
	target := NewCart(GuestOwner("session-1"))
	target.AddItem(item("t1", 1, 10.0, 1))

	target.MergeFrom(NewCart(GuestOwner("session-2")))

	require.Len(t, target.Items, 1)
	assert.Equal(t, 10.0, target.Total)
	assert.False(t, target.IsGuest)
}

func TestTotalInvariant_AfterEveryMutation(t *testing.T) {
	cart := NewCart(GuestOwner("s"))

	check := func() {
		var want float64
		for _, it := range cart.Items {
			want += it.Price * float64(it.Quantity)
		}
		assert.InDelta(t, want, cart.Total, 1e-9)
	}

	cart.AddItem(item("a", 1, 19.99, 3))
	check()
	cart.AddItem(item("b", 2, 4.5, 1))
	check()
	cart.SetItemQuantity("a", 1)
	check()
	cart.RemoveItem("b")
	check()
	cart.Clear()
	check()
}
