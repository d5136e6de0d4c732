// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/models"
)

// mapDispatchError translates the adapter's error for op into the outbox
// failure taxonomy.
//
// A nil result means the failure is equivalent to success and the record can
// be removed: a DELETE answered with 404 targets something that is already
// gone. [ErrDependencyNotReady] means the record waits silently. Any other
// error leaves the record queued and is logged by the caller.
func mapDispatchError(op models.Operation, hasReferences bool, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case op.Type == models.OperationDelete && errors.Is(err, adapter.ErrNotFound):
		return nil

	case hasReferences && errors.Is(err, adapter.ErrBadRequest):
		return fmt.Errorf("%w: %w", ErrDependencyNotReady, err)
	}

	return err
}

// statusOf returns the HTTP status carried by err, or zero when the request
// never reached the server.
func statusOf(err error) int {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
