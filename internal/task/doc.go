// Package task runs durable background work. Tasks are persisted before they
// are queued, claimed atomically before they execute, and re-created from
// their stored type and payload after a restart.
package task
