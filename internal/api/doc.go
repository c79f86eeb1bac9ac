// Package api exposes course generation and validation over HTTP. Handlers
// decode and validate requests, call the curriculum orchestrator or the
// validation engine, and translate their errors into status codes without
// leaking internal details.
package api
