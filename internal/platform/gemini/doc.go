// Package gemini implements analysis.Analyzer on Google's Gemini API.
//
// The analyzer renders a prompt template with the entry text and target
// language, asks the model for a JSON object of scores, and retries
// transient API failures with exponential backoff and jitter. Responses
// blocked by safety filters or that cannot be parsed are permanent failures
// and are not retried.
package gemini
