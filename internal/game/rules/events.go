package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a match event.
type EventType string

const (
	// Match lifecycle events
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchEnded   EventType = "MATCH_ENDED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"

	// Placement/zone events
	EventCardPlaced     EventType = "CARD_PLACED"
	EventCardEquipped   EventType = "CARD_EQUIPPED"
	EventFieldChanged   EventType = "FIELD_CHANGED"
	EventCardFlipped    EventType = "CARD_FLIPPED"
	EventCardPromoted   EventType = "CARD_PROMOTED"
	EventCardSacrificed EventType = "CARD_SACRIFICED"
	EventCardDiscarded  EventType = "CARD_DISCARDED"
	EventCardDestroyed  EventType = "CARD_DESTROYED"
	EventCardDrawn      EventType = "CARD_DRAWN"

	// Combat events
	EventAttackDeclared EventType = "ATTACK_DECLARED"
	EventDirectDamage   EventType = "DIRECT_DAMAGE"
	EventClash          EventType = "CLASH"

	// Resource events
	EventLifeChanged EventType = "LIFE_CHANGED"
	EventManaChanged EventType = "MANA_CHANGED"
	EventRevival     EventType = "REVIVAL"

	// Player protocol events
	EventForfeitArmed EventType = "FORFEIT_ARMED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	Side        Side
	CardID      string
	TargetID    string
	Amount      int
	Description string
	Timestamp   time.Time
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	if typed, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typed {
			listener.Callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, side Side, cardID string) Event {
	return Event{
		Type:      eventType,
		Side:      side,
		CardID:    cardID,
		Timestamp: time.Now(),
	}
}
