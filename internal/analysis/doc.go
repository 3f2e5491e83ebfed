// Package analysis defines the boundary to the language model that scores
// journal entries. Implementations live under internal/platform; callers
// depend only on the Analyzer interface.
package analysis
