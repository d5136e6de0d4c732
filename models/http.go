package models

// DispatchRequest is a single REST call derived from a pending operation.
type DispatchRequest struct {
	// Method is the HTTP verb (POST, PUT or DELETE).
	Method string
	// Path is relative to the configured server base URL.
	Path string
	// Body is encoded as JSON. Nil means no body.
	Body Payload
	// IdempotencyKey is sent as the Idempotency-Key header so servers that
	// support it can drop replays of an operation.
	IdempotencyKey string
}

// DispatchResponse is what the server answered to a [DispatchRequest].
type DispatchResponse struct {
	Status int
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r DispatchResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
