package eventing

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrUnknownEventType indicates the event type is not registered.
	ErrUnknownEventType = errors.New("eventing: unknown event type")
	// ErrDuplicateEventType indicates the event type is already registered.
	ErrDuplicateEventType = errors.New("eventing: duplicate event type")
)

// Registry maps event type names to concrete payload types for decoding.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewRegistry creates an empty event type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Register adds an event payload type keyed by its reflected type name.
func (r *Registry) Register(event any) error {
	if event == nil {
		return ErrNilEvent
	}
	eventType := reflect.TypeOf(event)
	for eventType.Kind() == reflect.Ptr {
		eventType = eventType.Elem()
	}
	name := eventType.String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEventType, name)
	}
	r.types[name] = eventType
	return nil
}

// MustRegister registers an event type and panics on failure. Intended for
// wiring at startup.
func (r *Registry) MustRegister(events ...any) {
	for _, event := range events {
		if err := r.Register(event); err != nil {
			panic(err)
		}
	}
}

// Decode reconstructs a typed event payload from an envelope.
func (r *Registry) Decode(env Envelope) (any, error) {
	r.mu.RLock()
	eventType, ok := r.types[env.EventType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, env.EventType)
	}

	value := reflect.New(eventType)
	if err := json.Unmarshal(env.Payload, value.Interface()); err != nil {
		return nil, fmt.Errorf("eventing: decode %s: %w", env.EventType, err)
	}
	return value.Elem().Interface(), nil
}
