// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats. Each normaliser knows how to extract
// text content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. The Registry
// sniffs the content type when none was declared and routes by substring
// match, so "application/pdf; qs=0.9" still reaches the PDF normaliser.
package normalisers
