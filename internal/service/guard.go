package service

import (
	"strings"

	"github.com/MKhiriev/go-outbox/models"
)

// Guard classifies a pending record right before it would be dispatched.
type Guard struct {
	catalog *models.ResourceCatalog
}

func NewGuard(catalog *models.ResourceCatalog) *Guard {
	if catalog == nil {
		catalog = models.DefaultResourceCatalog()
	}
	return &Guard{catalog: catalog}
}

// Classify returns
//   - VOID when the record has a custom endpoint outside the allow-list;
//   - SKIP when it still points at an entity known only by a temporary
//     identifier;
//   - DISPATCH otherwise.
func (g *Guard) Classify(op models.Operation) models.Classification {
	if op.CustomEndpoint != "" && !g.catalog.EndpointAllowed(op.CustomEndpoint) {
		return models.ClassVoid
	}
	if hasPendingReference(op) {
		return models.ClassSkip
	}
	return models.ClassDispatch
}

// hasPendingReference reports whether any payload value or custom endpoint
// segment is a temporary identifier. The local identifier of a CREATE is its
// own and does not count.
func hasPendingReference(op models.Operation) bool {
	for _, segment := range strings.Split(op.CustomEndpoint, "/") {
		if models.IsTemporaryID(segment) {
			return true
		}
	}

	for key, value := range op.Payload {
		if key == models.PayloadLocalID && op.Type == models.OperationCreate {
			continue
		}
		if holdsTemporaryID(value) {
			return true
		}
	}
	return false
}

func holdsTemporaryID(value any) bool {
	switch v := value.(type) {
	case string:
		return models.IsTemporaryID(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && models.IsTemporaryID(s) {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if models.IsTemporaryID(s) {
				return true
			}
		}
	}
	return false
}
