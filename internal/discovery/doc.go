// Package discovery defines the source interface shared by the channel,
// portal, and legistar adapters.
package discovery
