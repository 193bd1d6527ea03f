// Package config provides configuration loading, merging, and validation
// facilities for the offsync engine.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. JSON config file (-c/--config or CONFIG)
//  2. Environment variables
//  3. Command-line flags registered with [BindFlags]
//
// Fields still empty afterwards take their value from [Defaults].
// [GetClientConfig] returns the validated view consumed by the engine.
package config
