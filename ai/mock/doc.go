// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	gen := mock.NewMockGenerator()
//	gen.GenerateFunc = func(ctx context.Context, prompt string) ai.Generation {
//	    return ai.Generated("See <a1b2c3d4>.")
//	}
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), gen)
//
//	// Check call counts and the last prompt seen
//	count := gen.CallCount()
//	prompt := gen.LastPrompt()
//
// # Default Behavior
//
//   - MockEmbedder: unit vectors seeded from a hash of the text
//   - MockGenerator: Echoes a fixed answer citing nothing
package mock
