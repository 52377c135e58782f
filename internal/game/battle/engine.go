package battle

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Engine keeps every live battle, keyed by battle ID.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	battles map[uuid.UUID]*Controller
}

// NewEngine creates an empty battle Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{battles: make(map[uuid.UUID]*Controller)}
}

// Open builds a Controller from d and registers it. The battle is not started.
//
// Postcondition: Returns the registered Controller, or an error if d is incomplete.
func (e *Engine) Open(d Deps) (*Controller, error) {
	c, err := NewController(d)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.battles[c.ID()]; exists {
		return nil, fmt.Errorf("battle %s already registered", c.ID())
	}
	e.battles[c.ID()] = c
	return c, nil
}

// Get returns the battle with the given ID.
//
// Postcondition: Returns (controller, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(id uuid.UUID) (*Controller, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.battles[id]
	return c, ok
}

// Close removes the battle record for id.
func (e *Engine) Close(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.battles, id)
}

// Len returns the number of registered battles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}
