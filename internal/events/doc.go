// Package events lets services request background work without depending on
// the task package. Services emit TaskRequestEvents and handlers registered
// with the emitter turn them into tasks.
package events
