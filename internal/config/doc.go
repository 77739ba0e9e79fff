// Package config loads, validates, and normalizes civicintel configuration.
//
// The jurisdiction table, keyword vocabularies, service endpoints, and
// pacing settings all live here as one immutable value handed to adapter
// and stage constructors, so tests can substitute alternate jurisdiction
// sets without touching ambient state. Artifact path helpers also live on
// Config because artifact naming is the pipeline's idempotency contract.
package config
