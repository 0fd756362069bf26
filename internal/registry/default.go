// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	_ "embed"
	"fmt"
)

//go:embed default_registry.yaml
var defaultRegistry []byte

// Default returns the built-in registry used when no registry file is configured.
func Default() (*Registry, error) {
	reg, err := Parse(defaultRegistry)
	if err != nil {
		return nil, fmt.Errorf("built-in registry: %w", err)
	}
	return reg, nil
}
