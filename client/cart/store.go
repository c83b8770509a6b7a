package cart

import (
	"sync"
)

type Listener func(State)

// Store holds one cart. It is safe for concurrent use; dispatches are applied
// one at a time in call order and listeners run after the lock is released.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func NewStore() *Store {
	return &Store{
		state:     State{Items: []Item{}},
		listeners: make(map[int]Listener),
	}
}

// NewStoreFrom restores a previously saved cart, recomputing its total and
// dropping lines that would break the cart invariants.
func NewStoreFrom(items []Item) *Store {
	s := NewStore()
	st := State{Items: []Item{}}
	for _, it := range items {
		st = Reduce(st, AddItem{Item: it, Quantity: it.Quantity})
	}
	s.state = st
	return s
}

// State returns a copy of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and notifies listeners with the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.clone())
	}
	return snapshot
}

// Subscribe registers l; the returned func removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) Add(item Item, quantity int) State {
	return s.Dispatch(AddItem{Item: item, Quantity: quantity})
}

func (s *Store) SetQuantity(id uint, quantity int) State {
	return s.Dispatch(UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Remove(id uint) State {
	return s.Dispatch(RemoveItem{ID: id})
}

func (s *Store) SetInstructions(id uint, text string) State {
	return s.Dispatch(UpdateInstructions{ID: id, Instructions: text})
}

func (s *Store) Clear() State {
	return s.Dispatch(ClearCart{})
}

func (s *Store) RemoveOrdered(items []Item) State {
	return s.Dispatch(RemoveOrdered{Items: items})
}
