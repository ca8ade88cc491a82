package core

import "sync"

type EventContext struct {
	Type   SystemEventCode
	Sender interface{}
	Data   interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Resized/resolution changed.
	/* Context usage:
	 * Data: *ResizeEvent
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// The editor replaced the renderer options.
	/* Context usage:
	 * Data: the new options value
	 */
	EVENT_CODE_RENDER_OPTIONS_CHANGED SystemEventCode = 0x10

	// A watched shader source file was created or modified.
	/* Context usage:
	 * Data: string shader name without extension
	 */
	EVENT_CODE_SHADER_SOURCE_CHANGED SystemEventCode = 0x11

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

var eventState *eventSystemState

func EventSystemInitialize() bool {
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return ErrNotInitialized
	}
	eventState = nil
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. A listener
 * can register only once per code.
 * @returns true if the event is successfully registered; otherwise false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code.
 * @returns true if the event is successfully unregistered; otherwise false.
 */
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.RLock()
	events := make([]*registeredEvent, len(eventState.registered[context.Type]))
	copy(events, eventState.registered[context.Type])
	eventState.mu.RUnlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}
