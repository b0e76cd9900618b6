// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with its full text and segments
//   - Segment: A retrievable span of document text
//   - RawContent: Opaque bytes from a URL or an upload
//   - CacheEntry / SessionEntry: Values held by the ingestion caches
//   - RiskFinding: A clause matched by the risk checklist scan
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
