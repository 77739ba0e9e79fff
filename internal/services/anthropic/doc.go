// Package anthropic calls the Anthropic Messages API and carries the
// housing analysis prompt template.
package anthropic
