// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the outbox agent runtime.
//
// It wires storages, services, the control API and the background workers
// into a single process lifecycle with graceful shutdown.
package client
