// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline keeper runtime.
//
// It wires the local store, the remote adapter, the client services, the
// background workers, the HTTP API and the terminal monitor into a single
// process lifecycle. The cli package drives it.
package client
