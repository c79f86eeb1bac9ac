// Package gemini provides an implementation of the generation.Generator
// interface backed by Google's Gemini API.
//
// The adapter translates role-tagged generation messages into Gemini
// contents and a system instruction, maps the first candidate back into a
// generation.Response with token usage, and retries transient API errors
// with exponential backoff. Safety blocks and malformed responses are
// permanent and are returned immediately.
package gemini
