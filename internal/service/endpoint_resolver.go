package service

import (
	"strings"

	"github.com/MKhiriev/go-outbox/models"
)

// EndpointResolver maps a resource name to its REST collection path.
type EndpointResolver struct {
	catalog *models.ResourceCatalog
}

func NewEndpointResolver(catalog *models.ResourceCatalog) *EndpointResolver {
	if catalog == nil {
		catalog = models.DefaultResourceCatalog()
	}
	return &EndpointResolver{catalog: catalog}
}

// Resolve returns the catalog path of resource, or "/" + resource + "s" for
// resources the catalog does not know.
func (r *EndpointResolver) Resolve(resource string) string {
	if res, ok := r.catalog.Lookup(resource); ok && res.Path != "" {
		return res.Path
	}
	return "/" + resource + "s"
}

// Target returns the path an operation is sent to before any identifier is
// appended. A custom endpoint always wins.
func (r *EndpointResolver) Target(op models.Operation) string {
	if op.CustomEndpoint != "" {
		return op.CustomEndpoint
	}
	return r.Resolve(op.Resource)
}

// joinID appends id as the last path segment of path.
func joinID(path, id string) string {
	return strings.TrimRight(path, "/") + "/" + id
}
