// Package schema declares the fixed set of collections the pharmacy store
// keeps, the secondary indexes each one needs for its lookup columns, and the
// parent/child relations used by cascading deletes.
//
// The store itself is schemaless: nothing here is enforced on record shape.
package schema

import "sort"

// Collection names.
const (
	Products       = "products"
	Sales          = "sales"
	SaleItems      = "sale_items"
	Customers      = "customers"
	PaymentHistory = "payment_history"
	CustomerLoans  = "customer_loans"
	Accounts       = "accounts"
)

// PrimaryKey is the key path of every collection.
const PrimaryKey = "id"

// Relation links dependent rows of Child to a parent row through Column,
// which holds the parent's primary key.
type Relation struct {
	Child  string
	Column string
}

// Collection describes one physical object store.
type Collection struct {
	Name    string
	Indexes []string
	// Relations are walked children-first by cascading deletes only.
	Relations []Relation
}

// HasIndex reports whether column has a secondary index.
func (c Collection) HasIndex(column string) bool {
	for _, idx := range c.Indexes {
		if idx == column {
			return true
		}
	}
	return false
}

// Registry maps collection names to their definitions.
type Registry struct {
	byName map[string]Collection
	names  []string
}

// NewRegistry builds a registry from the given collections. Later
// definitions with the same name replace earlier ones.
func NewRegistry(cols ...Collection) *Registry {
	r := &Registry{byName: make(map[string]Collection, len(cols))}
	for _, c := range cols {
		if _, exists := r.byName[c.Name]; !exists {
			r.names = append(r.names, c.Name)
		}
		r.byName[c.Name] = c
	}
	sort.Strings(r.names)
	return r
}

// Default returns the pharmacy collections.
func Default() *Registry {
	return NewRegistry(
		Collection{
			Name:    Products,
			Indexes: []string{"user_id", "name", "batch_number"},
		},
		Collection{
			Name:    Sales,
			Indexes: []string{"user_id", "customer_id", "created_at"},
			Relations: []Relation{
				{Child: SaleItems, Column: "sale_id"},
				{Child: CustomerLoans, Column: "sale_id"},
			},
		},
		Collection{
			Name:    SaleItems,
			Indexes: []string{"sale_id", "product_id"},
		},
		Collection{
			Name:    Customers,
			Indexes: []string{"user_id", "name"},
			Relations: []Relation{
				{Child: Sales, Column: "customer_id"},
				{Child: PaymentHistory, Column: "customer_id"},
				{Child: CustomerLoans, Column: "customer_id"},
			},
		},
		Collection{
			Name:    PaymentHistory,
			Indexes: []string{"customer_id", "user_id", "created_at"},
		},
		Collection{
			Name:    CustomerLoans,
			Indexes: []string{"customer_id", "sale_id"},
		},
		Collection{
			Name:    Accounts,
			Indexes: []string{"email"},
		},
	)
}

// Lookup returns the named collection.
func (r *Registry) Lookup(name string) (Collection, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns every collection name in lexical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Collections returns every collection definition in lexical order.
func (r *Registry) Collections() []Collection {
	out := make([]Collection, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}
