// Package gemini implements generation.Tutor on top of Google's Gemini API
// (google.golang.org/genai).
//
// Both calls send the fixed instruction prompt as one user turn followed by
// the request turn, ask for JSON output constrained by a response schema, and
// set a thinking budget from configuration. Raw responses are normalized
// before they reach the domain: missing arrays become empty, difficulty items
// are folded into a topic map, question ids are made unique, and evaluation
// scores are clamped with the band derived when the model returns an unknown
// one.
//
// Transient failures (network errors, HTTP 429 and 5xx) are retried with
// exponential backoff and jitter up to LLMConfig.MaxRetries. Safety blocks
// and malformed responses are permanent and returned immediately.
package gemini
