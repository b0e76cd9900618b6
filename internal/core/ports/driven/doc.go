// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Fetcher: Downloads document bytes from a URL
//   - Normaliser / NormaliserRegistry: Converts raw bytes into text
//   - PostProcessor / PostProcessorPipeline: Splits text into segments
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Stores segment vectors in a shared namespace
//   - LLMService: Language model completion
//   - KeyValueStore: Backing store for the document cache and sessions
//   - Throttler: Spaces out batched model calls
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
