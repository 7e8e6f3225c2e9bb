// Package llm talks to an OpenRouter-compatible chat completion endpoint.
//
// The client requests JSON-only answers, retries on 408, 429, 5xx and
// transport timeouts with capped exponential backoff (honouring Retry-After),
// and tolerates models that wrap JSON in code fences. ClassifyCourse builds
// the course selection prompt used by the optional fallback classifier.
package llm
