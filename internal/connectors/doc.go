// Package connectors provides the ways docqa obtains document bytes.
// The web connector downloads a single URL for ingestion.
package connectors
