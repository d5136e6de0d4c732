package models

import (
	"regexp"
	"strings"
)

// Tier is the dependency bucket a resource is dispatched in. Buckets run in
// ascending order within one sync run.
type Tier string

const (
	// TierTaxonomy holds independent resources other records refer to.
	TierTaxonomy Tier = "taxonomy"
	// TierIndependent holds resources with no known dependents or
	// dependencies. Unknown resources land here.
	TierIndependent Tier = "independent"
	// TierDependent holds resources that reference taxonomy entities.
	TierDependent Tier = "dependent"
)

// Order returns the position of the tier in the dispatch sequence.
func (t Tier) Order() int {
	switch t {
	case TierTaxonomy:
		return 0
	case TierDependent:
		return 2
	default:
		return 1
	}
}

// Reference names a payload field that holds the identifier of another
// resource.
type Reference struct {
	Field    string `yaml:"field" json:"field"`
	Resource string `yaml:"resource" json:"resource"`
}

// Resource describes how one logical entity is synchronised.
type Resource struct {
	Name       string      `yaml:"name" json:"name"`
	Path       string      `yaml:"path" json:"path"`
	Tier       Tier        `yaml:"tier" json:"tier"`
	References []Reference `yaml:"references,omitempty" json:"references,omitempty"`
}

// ResourceCatalog is the static description of every resource the outbox
// knows how to route.
type ResourceCatalog struct {
	Resources []Resource `yaml:"resources" json:"resources"`
	// AllowedEndpoints lists the path prefixes a custom endpoint must start
	// with to be dispatched at all.
	AllowedEndpoints []string `yaml:"allowed_endpoints" json:"allowed_endpoints"`
	// RealIDPattern matches identifiers assigned by the server.
	RealIDPattern string `yaml:"real_id_pattern" json:"real_id_pattern"`

	index   map[string]Resource
	realIDs *regexp.Regexp
}

// DefaultRealIDPattern matches a 24 character hex object id.
const DefaultRealIDPattern = `^[0-9a-fA-F]{24}$`

// DefaultResourceCatalog returns the catalog of the gym backend.
func DefaultResourceCatalog() *ResourceCatalog {
	c := &ResourceCatalog{
		Resources: []Resource{
			{Name: "membership", Path: "/memberships", Tier: TierIndependent},
			{Name: "client", Path: "/users", Tier: TierIndependent},
			{Name: "muscle-group", Path: "/muscle-groups", Tier: TierTaxonomy},
			{
				Name: "exercise", Path: "/exercises", Tier: TierDependent,
				References: []Reference{{Field: "muscleGroup", Resource: "muscle-group"}},
			},
			{Name: "routine", Path: "/routines", Tier: TierIndependent},
			{Name: "routine-muscle-group", Path: "/routines/muscle-groups", Tier: TierIndependent},
		},
		AllowedEndpoints: []string{
			"/routines/",
			"/memberships/",
			"/users/",
			"/muscle-groups/",
			"/exercises/",
		},
		RealIDPattern: DefaultRealIDPattern,
	}
	_ = c.Compile()
	return c
}

// Compile builds the lookup index and the real id matcher. It must be called
// after the catalog is decoded.
func (c *ResourceCatalog) Compile() error {
	if c.RealIDPattern == "" {
		c.RealIDPattern = DefaultRealIDPattern
	}
	re, err := regexp.Compile(c.RealIDPattern)
	if err != nil {
		return err
	}
	c.realIDs = re

	c.index = make(map[string]Resource, len(c.Resources))
	for _, r := range c.Resources {
		if r.Tier == "" {
			r.Tier = TierIndependent
		}
		c.index[r.Name] = r
	}
	return nil
}

// Lookup returns the resource registered under name.
func (c *ResourceCatalog) Lookup(name string) (Resource, bool) {
	r, ok := c.index[name]
	return r, ok
}

// TierOf returns the dispatch tier of a resource. Unknown resources are
// independent.
func (c *ResourceCatalog) TierOf(name string) Tier {
	if r, ok := c.index[name]; ok {
		return r.Tier
	}
	return TierIndependent
}

// IsRealID reports whether v looks like a server-assigned identifier.
func (c *ResourceCatalog) IsRealID(v string) bool {
	if c.realIDs == nil {
		return v != "" && !IsTemporaryID(v)
	}
	return c.realIDs.MatchString(v)
}

// EndpointAllowed reports whether a custom endpoint starts with one of the
// allowed prefixes.
func (c *ResourceCatalog) EndpointAllowed(endpoint string) bool {
	for _, prefix := range c.AllowedEndpoints {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}
