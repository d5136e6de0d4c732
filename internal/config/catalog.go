package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/go-outbox/models"
)

// LoadCatalog reads a YAML resource catalog from path. An empty path yields
// the built-in catalog.
//
// Example:
//
//	resources:
//	  - name: muscle-group
//	    path: /muscle-groups
//	    tier: taxonomy
//	  - name: exercise
//	    path: /exercises
//	    tier: dependent
//	    references:
//	      - field: muscleGroup
//	        resource: muscle-group
//	allowed_endpoints:
//	  - /routines/
func LoadCatalog(path string) (*models.ResourceCatalog, error) {
	if path == "" {
		return models.DefaultResourceCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*models.ResourceCatalog, error) {
	catalog := new(models.ResourceCatalog)
	if err := yaml.Unmarshal(raw, catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if len(catalog.Resources) == 0 {
		return nil, fmt.Errorf("%w: no resources declared", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(catalog.Resources))
	for _, r := range catalog.Resources {
		if r.Name == "" || r.Path == "" {
			return nil, fmt.Errorf("%w: resource needs a name and a path", ErrInvalidCatalog)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate resource %q", ErrInvalidCatalog, r.Name)
		}
		switch r.Tier {
		case "", models.TierTaxonomy, models.TierIndependent, models.TierDependent:
		default:
			return nil, fmt.Errorf("%w: unknown tier %q of %q", ErrInvalidCatalog, r.Tier, r.Name)
		}
		seen[r.Name] = struct{}{}
	}

	if err := catalog.Compile(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	return catalog, nil
}
