// Package events carries workspace state changes from the tutor state machine
// to whoever persists or observes them.
//
// The primary components are:
// - StateChangedEvent: a committed workspace transition with a snapshot of the new state
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
//
// Dispatch is synchronous: EmitEvent returns after every handler has run.
package events
