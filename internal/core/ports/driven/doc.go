// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vectors from text (OpenAI, Ollama)
//   - EmbeddingCache: Content-addressed vector cache
//   - VectorStore: Persists index records and serves candidate queries
//   - DocumentStore: Document version and chunk persistence
//   - ConfigStore: Application configuration
//   - PostProcessor: Splits documents into chunks
//
// # Optional Capabilities
//
// Adapters may additionally implement:
//
//   - NativeSearcher: Vector search inside the store. Without it, the
//     similarity index samples candidates and ranks them locally.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
