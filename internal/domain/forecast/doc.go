// Package forecast projects a learner's future scores from their history of
// analyzed journal entries.
//
// Short histories use Holt's linear trend method with a diminishing-returns
// correction toward the 100 ceiling; longer ones use Holt's damped trend
// method. Smoothing parameters are chosen by an exhaustive grid search that
// minimizes in-sample one-step-ahead squared error.
//
// Every function in this package is pure and safe for concurrent use.
package forecast
