// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the embeddable sync engine runtime.
//
// [Engine] wires the local store, the remote adapter, the connectivity
// monitor, the client services and the background workers into a single
// lifecycle with explicit [Engine.Open] and [Engine.Close] calls. Host
// applications create one engine per database file and inject their own
// collaborators (for example a custom adapter) through options.
package client
