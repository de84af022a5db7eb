package storage

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/pack-planner/internal/planner"
)

var (
	// ErrInvalidDefaults indicates the provided planning defaults violate
	// validation rules.
	ErrInvalidDefaults = errors.New("planning defaults must allow at least one item per pack and a positive pack weight")
)

var defaultPlanning = Defaults{
	Limits: planner.PackLimits{MaxItems: 40, MaxWeight: 500.0},
	Order:  planner.Natural,
}

// Defaults holds the planning settings applied when a request does not carry
// its own limits or sort order.
type Defaults struct {
	Limits planner.PackLimits
	Order  planner.SortOrder
}

// Storage provides access to the planning defaults used by the API.
type Storage interface {
	GetDefaults() (Defaults, error)
	SetDefaults(defaults Defaults) error
}

// MemoryStorage keeps planning defaults in-memory and guards access with a
// RWMutex. The defaults live only for the lifetime of the process.
type MemoryStorage struct {
	mu       sync.RWMutex
	defaults Defaults
}

// NewMemoryStorage initialises storage with the built-in planning defaults.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{defaults: defaultPlanning}
}

// DefaultPlanningDefaults returns the built-in planning defaults.
func DefaultPlanningDefaults() Defaults {
	return defaultPlanning
}

// GetDefaults returns the currently configured planning defaults.
func (s *MemoryStorage) GetDefaults() (Defaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.defaults, nil
}

// SetDefaults validates and stores the provided planning defaults.
func (s *MemoryStorage) SetDefaults(defaults Defaults) error {
	if defaults.Limits.MaxItems <= 0 || defaults.Limits.MaxWeight <= 0 {
		return ErrInvalidDefaults
	}

	s.mu.Lock()
	s.defaults = defaults
	s.mu.Unlock()

	return nil
}
