package types

import (
	"fmt"
	"maps"
	"sync"
)

// Catalog is the set of data types known to a trace. Resolutions happen inside
// a Transaction and become visible only when it commits.
type Catalog struct {
	mu    sync.Mutex
	types map[string]DataType
	log   []string
}

// NewCatalog returns a catalog seeded with dts.
func NewCatalog(dts ...DataType) *Catalog {
	c := &Catalog{types: make(map[string]DataType, len(dts))}
	for _, dt := range dts {
		c.types[dt.Name()] = dt
	}
	return c
}

// Lookup returns the committed type with the given name.
func (c *Catalog) Lookup(name string) (DataType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dt, ok := c.types[name]
	return dt, ok
}

// Len returns the number of committed types.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.types)
}

// History returns the descriptions of committed transactions, oldest first.
func (c *Catalog) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

// Tx stages resolutions for one transaction.
type Tx struct {
	c      *Catalog
	staged map[string]DataType
	closed bool
}

// Resolve returns the catalog's instance of dt, staging dt if the catalog
// does not have a type of that name yet. A committed or staged type with the
// same name and a different length is a conflict.
func (tx *Tx) Resolve(dt DataType) (DataType, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if dt == nil {
		return nil, ErrNilType
	}
	name := dt.Name()
	existing, ok := tx.staged[name]
	if !ok {
		existing, ok = tx.c.types[name]
	}
	if ok {
		if existing.Length() != dt.Length() {
			return nil, fmt.Errorf("%w: %s is %d bytes, candidate is %d",
				ErrTypeConflict, name, existing.Length(), dt.Length())
		}
		return existing, nil
	}
	tx.staged[name] = dt
	return dt, nil
}

// Transaction runs fn with exclusive access to the catalog. If fn returns nil
// every staged resolution is committed; otherwise, or if fn panics, nothing
// is.
func (c *Catalog) Transaction(desc string, fn func(tx *Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := &Tx{c: c, staged: make(map[string]DataType)}
	defer func() { tx.closed = true }()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", desc, err)
	}
	maps.Copy(c.types, tx.staged)
	c.log = append(c.log, desc)
	return nil
}
