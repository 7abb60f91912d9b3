// Package ai defines the two model services a chat turn needs: an Embedder
// for the semantic half of retrieval and a Generator for the answer.
//
// Generate never returns an error. It returns a Generation that is either
// text or a failure, and an empty completion counts as a failure. Callers
// check Generation.OK and fall back to a canned reply otherwise, so a model
// outage degrades a response instead of failing the request.
//
// Concrete services live in ai/openai; ai/mock has deterministic doubles.
// Production constructors return the interfaces, while the mock constructors
// return concrete types so tests can inspect call counts and prompts.
package ai
