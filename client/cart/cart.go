// Package cart is the client-side shopping cart: a pure reducer over a small
// set of typed actions plus a Store that serialises dispatches and notifies
// subscribers.
package cart

import (
	"github.com/shopspring/decimal"
)

type Item struct {
	ID                  uint            `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	ImageURL            string          `json:"image_url"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// LineTotal is price times quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type State struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Count is the number of units across all lines.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s State) Empty() bool { return len(s.Items) == 0 }

// Find returns the line with id.
func (s State) Find(id uint) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (s State) clone() State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return State{Items: items, Total: s.Total}
}

// Action is one of AddItem, UpdateQuantity, RemoveItem, UpdateInstructions,
// ClearCart or RemoveOrdered.
type Action interface {
	apply(State) State
}

type AddItem struct {
	Item     Item
	Quantity int
}

type UpdateQuantity struct {
	ID       uint
	Quantity int
}

type RemoveItem struct {
	ID uint
}

type UpdateInstructions struct {
	ID           uint
	Instructions string
}

type ClearCart struct{}

// RemoveOrdered takes the quantities in Items off the cart. Lines added after
// those items were captured, and any extra units, stay.
type RemoveOrdered struct {
	Items []Item
}

// Reduce returns the state after a; s is never modified.
func Reduce(s State, a Action) State {
	next := a.apply(s.clone())
	next.Total = total(next.Items)
	return next
}

func (a AddItem) apply(s State) State {
	if a.Quantity <= 0 {
		return s
	}
	for i := range s.Items {
		if s.Items[i].ID == a.Item.ID {
			s.Items[i].Quantity += a.Quantity
			return s
		}
	}
	it := a.Item
	it.Quantity = a.Quantity
	s.Items = append(s.Items, it)
	return s
}

func (a UpdateQuantity) apply(s State) State {
	if a.Quantity <= 0 {
		return RemoveItem{ID: a.ID}.apply(s)
	}
	for i := range s.Items {
		if s.Items[i].ID == a.ID {
			s.Items[i].Quantity = a.Quantity
			break
		}
	}
	return s
}

func (a RemoveItem) apply(s State) State {
	out := s.Items[:0]
	for _, it := range s.Items {
		if it.ID != a.ID {
			out = append(out, it)
		}
	}
	s.Items = out
	return s
}

func (a UpdateInstructions) apply(s State) State {
	for i := range s.Items {
		if s.Items[i].ID == a.ID {
			s.Items[i].SpecialInstructions = a.Instructions
			break
		}
	}
	return s
}

func (ClearCart) apply(State) State {
	return State{Items: []Item{}}
}

func (a RemoveOrdered) apply(s State) State {
	ordered := make(map[uint]int, len(a.Items))
	for _, it := range a.Items {
		ordered[it.ID] += it.Quantity
	}
	out := s.Items[:0]
	for _, it := range s.Items {
		it.Quantity -= ordered[it.ID]
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	s.Items = out
	return s
}

func total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
