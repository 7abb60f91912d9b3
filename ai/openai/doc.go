// Package openai talks to OpenAI-compatible endpoints (OpenAI itself, Ollama,
// vLLM and similar) through langchaingo.
//
// The embedder turns a chat query into the vector used by semantic retrieval,
// and turns passages into vectors when an index is seeded. The generator sends
// the assembled prompt as one user message and reports an empty or failed
// completion as a failed ai.Generation, never as an empty answer.
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithGenerationModel("qwen2.5:7b"),
//	))
//	if err != nil {
//	    return err
//	}
//	gen := provider.Generator().Generate(ctx, prompt)
package openai
