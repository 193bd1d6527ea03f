// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoAddress is returned by NewServer when no listen address is configured.
var errNoAddress = errors.New("status api address is empty")
