// Package config provides configuration loading, merging, and validation
// facilities for the outbox agent.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The resource catalog (which resources exist, their paths, dispatch tiers,
// and reference fields) is read from an optional YAML file, see
// [LoadCatalog].
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [GetClientConfig] for the validated runtime view.
package config
