// Package events provides typed publish/subscribe used to report operation lifecycle events to observers such as
// metrics and logging.
package events

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// EventHandler defines a function type where its input type is the generic type. A returned error is reported to
// the publisher but does not stop delivery to the remaining handlers.
type EventHandler[T any] func(T) error

// globalEventHandlers maps event types to handlers invoked whenever any EventEmitter publishes an event of that type.
var globalEventHandlers = make(map[reflect.Type][]any)

// globalEventHandlersLock guards globalEventHandlers.
var globalEventHandlersLock sync.RWMutex

// SubscribeAny adds an EventHandler that is invoked for every published event of type T, regardless of emitter.
// Note: An EventHandler subscribed here remains for the lifetime of the process.
func SubscribeAny[T any](callback EventHandler[T]) {
	eventType := reflect.TypeOf((*T)(nil)).Elem()

	globalEventHandlersLock.Lock()
	defer globalEventHandlersLock.Unlock()
	globalEventHandlers[eventType] = append(globalEventHandlers[eventType], callback)
}

// EventEmitter publishes events of type T to its own subscribers and to global subscribers of T.
// The zero value is ready to use.
type EventEmitter[T any] struct {
	subscriptions     []EventHandler[T]
	subscriptionsLock sync.RWMutex
}

// Subscribe adds an EventHandler invoked for every event published to this emitter.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}

// Publish delivers event to every subscribed EventHandler, emitter subscribers first. It returns the first handler
// error, if any.
func (e *EventEmitter[T]) Publish(event T) error {
	e.subscriptionsLock.RLock()
	handlers := make([]EventHandler[T], len(e.subscriptions))
	copy(handlers, e.subscriptions)
	e.subscriptionsLock.RUnlock()

	globalEventHandlersLock.RLock()
	for _, callback := range globalEventHandlers[reflect.TypeOf((*T)(nil)).Elem()] {
		handlers = append(handlers, callback.(EventHandler[T]))
	}
	globalEventHandlersLock.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = errors.WithStack(err)
		}
	}
	return firstErr
}
