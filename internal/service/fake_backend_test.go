package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/MKhiriev/go-outbox/models"
)

// recordedRequest is what fakeBackend saw for one call.
type recordedRequest struct {
	Method         string
	Path           string
	Authorization  string
	IdempotencyKey string
	TraceID        string
	Body           models.Payload
}

// fakeBackend is an in-memory REST server with the semantics the dispatcher
// relies on: POST creates and returns the entity with a 24-hex _id, PUT and
// DELETE answer 404 for unknown ids, and a create that references an unknown
// entity is rejected with 400.
type fakeBackend struct {
	t     *testing.T
	token string

	mu       sync.Mutex
	entities map[string]map[string]models.Payload
	// references maps collection path -> payload field -> referenced collection.
	references map[string]map[string]string
	requests   []recordedRequest
	nextID     int

	inFlight    int
	maxInFlight int

	// override answers a request before the default semantics; it returns
	// false to fall through.
	override func(w http.ResponseWriter, req recordedRequest) bool
}

func newFakeBackend(t *testing.T, catalog *models.ResourceCatalog, token string) *fakeBackend {
	b := &fakeBackend{
		t:          t,
		token:      token,
		entities:   make(map[string]map[string]models.Payload),
		references: make(map[string]map[string]string),
	}
	for _, res := range catalog.Resources {
		for _, ref := range res.References {
			target, _ := catalog.Lookup(ref.Resource)
			if b.references[res.Path] == nil {
				b.references[res.Path] = make(map[string]string)
			}
			b.references[res.Path][ref.Field] = target.Path
		}
	}
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := recordedRequest{
		Method:         r.Method,
		Path:           r.URL.Path,
		Authorization:  r.Header.Get("Authorization"),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		TraceID:        r.Header.Get("X-Trace-ID"),
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&req.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	override := b.override
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}()

	if b.token != "" && req.Authorization != "Bearer "+b.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if override != nil && override(w, req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		b.create(w, req)
	case http.MethodPut:
		b.update(w, req)
	case http.MethodDelete:
		b.delete(w, req)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBackend) create(w http.ResponseWriter, req recordedRequest) {
	for field, collection := range b.references[req.Path] {
		ref, ok := req.Body.String(field)
		if !ok {
			continue
		}
		if _, exists := b.entities[collection][ref]; !exists {
			http.Error(w, fmt.Sprintf("%s %q does not exist", field, ref), http.StatusBadRequest)
			return
		}
	}

	b.nextID++
	entity := req.Body.Clone()
	entity["_id"] = fmt.Sprintf("%024x", b.nextID)
	entity["__v"] = 0

	if b.entities[req.Path] == nil {
		b.entities[req.Path] = make(map[string]models.Payload)
	}
	b.entities[req.Path][entity["_id"].(string)] = entity

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(entity)
}

func (b *fakeBackend) update(w http.ResponseWriter, req recordedRequest) {
	collection, id := splitEntityPath(req.Path)
	entity, ok := b.entities[collection][id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	for k, v := range req.Body {
		if k == "id" || k == "_id" {
			continue
		}
		entity[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entity)
}

func (b *fakeBackend) delete(w http.ResponseWriter, req recordedRequest) {
	collection, id := splitEntityPath(req.Path)
	if _, ok := b.entities[collection][id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(b.entities[collection], id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) seed(collection, id string, entity models.Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entities[collection] == nil {
		b.entities[collection] = make(map[string]models.Payload)
	}
	entity = entity.Clone()
	entity["_id"] = id
	b.entities[collection][id] = entity
}

func (b *fakeBackend) entity(collection, id string) (models.Payload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entities[collection][id]
	return e, ok
}

// find returns the entities of collection whose field equals value.
func (b *fakeBackend) find(collection, field string, value any) []models.Payload {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Payload
	for _, e := range b.entities[collection] {
		if e[field] == value {
			out = append(out, e)
		}
	}
	return out
}

func (b *fakeBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) paths() []string {
	var out []string
	for _, r := range b.recorded() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (b *fakeBackend) setOverride(fn func(w http.ResponseWriter, req recordedRequest) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.override = fn
}

func splitEntityPath(path string) (collection, id string) {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return path, ""
	}
	return path[:i], path[i+1:]
}
