// Package analysis holds the text-side machinery of housing analysis:
// keyword matching, model-response JSON extraction, and markdown summary
// rendering.
package analysis
