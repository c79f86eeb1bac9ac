// Package anthropic provides a generation.Generator backed by the Anthropic
// Messages API. It is selected with LLM_PROVIDER=anthropic.
package anthropic
