// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envNamespace prefixes variables that take precedence over the bare names,
// e.g. OFFSYNC_ADAPTER_ADDRESS over ADAPTER_ADDRESS.
const envNamespace = "OFFSYNC_"

// parseEnv populates cfg from environment variables using the caarlos0/env
// library. Struct fields are mapped via their `env` and `envPrefix` tags
// defined on [StructuredConfig] and its nested types. Bare names are read
// first, then the namespaced ones.
func parseEnv(cfg any) error {
	for _, prefix := range []string{"", envNamespace} {
		if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
			return fmt.Errorf("error getting env configs: %w", err)
		}
	}

	return nil
}
