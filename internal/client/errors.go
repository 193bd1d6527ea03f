// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

// ErrEngineClosed is returned by engine operations before Open and after
// Close.
var ErrEngineClosed = errors.New("engine is not open")
