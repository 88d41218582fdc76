package driver

import (
	"github.com/skaldic/xsdc/internal/parser"
	"github.com/skaldic/xsdc/pkg/xsdc"
)

// UnitCache caches parsed SchemaUnits by canonical id for the duration of
// one or more runs. It is an explicit object rather than process-global
// state, so repeated runs or concurrent tooling invocations in the same
// process do not leak schemas into each other.
//
// Not safe for concurrent use; each driver invocation owns its cache
// exclusively while running.
type UnitCache struct {
	units  map[string]*xsdc.SchemaUnit
	errors map[string]error
}

// NewUnitCache creates an empty cache.
func NewUnitCache() *UnitCache {
	return &UnitCache{
		units:  make(map[string]*xsdc.SchemaUnit),
		errors: make(map[string]error),
	}
}

// Load returns the parsed unit for canonicalID, parsing content on first
// use. Parse failures are cached too: a malformed file fails the same way
// every time it is referenced, without re-parsing.
func (c *UnitCache) Load(canonicalID string, content []byte) (*xsdc.SchemaUnit, error) {
	if unit, ok := c.units[canonicalID]; ok {
		return unit, nil
	}
	if err, ok := c.errors[canonicalID]; ok {
		return nil, err
	}

	unit, err := parser.Parse(content, canonicalID)
	if err != nil {
		c.errors[canonicalID] = err
		return nil, err
	}
	c.units[canonicalID] = unit
	return unit, nil
}

// Put inserts a pre-built unit, used for stub placeholders of unavailable
// schemas.
func (c *UnitCache) Put(unit *xsdc.SchemaUnit) {
	c.units[unit.CanonicalID] = unit
}

// Units returns the cached unit map, keyed by canonical id.
func (c *UnitCache) Units() map[string]*xsdc.SchemaUnit {
	return c.units
}
