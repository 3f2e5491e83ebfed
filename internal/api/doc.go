// Package api implements the HTTP handlers of the quill API. Handlers decode
// and validate requests, call a service and map its errors to status codes
// with MapErrorToStatusCode.
package api
