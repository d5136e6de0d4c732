// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// OperationType is the kind of mutation a pending [Operation] replays on the
// server.
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// Valid reports whether t is one of the three supported mutation kinds.
func (t OperationType) Valid() bool {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// TempIDPrefix marks a locally generated placeholder that stands in for a
// server-assigned identifier until the CREATE that owns it is confirmed.
const TempIDPrefix = "temp-"

// Well-known payload keys.
const (
	// PayloadTargetID holds the identifier of the entity an UPDATE or a
	// resource-based DELETE targets.
	PayloadTargetID = "id"
	// PayloadLocalID holds the temporary identifier of the entity a CREATE
	// produces. The server answers with the real value under the same key.
	PayloadLocalID = "_id"
)

// ServerManagedFields are stripped from CREATE bodies before they are sent.
var ServerManagedFields = []string{"_id", "id", "__v", "createdAt", "updatedAt"}

// IsTemporaryID reports whether v is a temporary identifier.
func IsTemporaryID(v string) bool {
	return strings.HasPrefix(v, TempIDPrefix) && len(v) > len(TempIDPrefix)
}

// Payload is the resource specific body of an [Operation].
type Payload map[string]any

// String returns the value stored under key when it is a non-empty string.
func (p Payload) String(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clone returns a shallow copy of p. Nested values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Without returns a copy of p with the given keys removed.
func (p Payload) Without(keys ...string) Payload {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Operation is a pending mutation. A record exists in the operation store if
// and only if it has not been confirmed by the server yet.
type Operation struct {
	ID             string        `json:"id"`
	Type           OperationType `json:"type"`
	Resource       string        `json:"resource"`
	Payload        Payload       `json:"payload"`
	CustomEndpoint string        `json:"customEndpoint,omitempty"`
	// Timestamp is the creation time in unix milliseconds. It is kept for
	// diagnostics and never used to order dispatch.
	Timestamp int64 `json:"timestamp"`
}

// LocalID returns the temporary identifier carried by a CREATE payload.
func (o Operation) LocalID() (string, bool) {
	id, ok := o.Payload.String(PayloadLocalID)
	if !ok || !IsTemporaryID(id) {
		return "", false
	}
	return id, true
}

// TargetID returns the identifier an UPDATE or DELETE points at.
func (o Operation) TargetID() (string, bool) {
	return o.Payload.String(PayloadTargetID)
}

// MarshalPayload encodes the payload for persistence.
func (o Operation) MarshalPayload() (string, error) {
	if o.Payload == nil {
		return "{}", nil
	}
	b, err := json.Marshal(o.Payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalPayload decodes a persisted payload.
func UnmarshalPayload(raw string) (Payload, error) {
	if raw == "" {
		return Payload{}, nil
	}
	return DecodePayload(strings.NewReader(raw))
}

// DecodePayload reads one JSON object from r. Numbers are kept as
// [json.Number] so integers wider than a float64 mantissa survive a round
// trip unchanged.
func DecodePayload(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var p Payload
	if err := dec.Decode((*map[string]any)(&p)); err != nil {
		return nil, err
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// UnmarshalJSON decodes p the way [DecodePayload] does.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	decoded, err := DecodePayload(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// Classification is the outcome of the pre-dispatch guard.
type Classification int

const (
	// ClassDispatch means the record can be sent now.
	ClassDispatch Classification = iota
	// ClassSkip means the record waits for a dependency and stays queued.
	ClassSkip
	// ClassVoid means the record can never correspond to a real resource and
	// is discarded without contacting the server.
	ClassVoid
)

func (c Classification) String() string {
	switch c {
	case ClassDispatch:
		return "DISPATCH"
	case ClassSkip:
		return "SKIP"
	case ClassVoid:
		return "VOID"
	}
	return "UNKNOWN"
}
