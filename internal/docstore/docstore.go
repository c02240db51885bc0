// Package docstore defines the document-store contract the client core
// depends on: per-user documents addressed by path, merge-upserts, and live
// change subscriptions. The production implementation polls the backend API;
// tests use in-memory fakes.
package docstore

import "context"

// Document is a stored record with its current version. Versions increase
// monotonically per path with every write, which lets subscribers poll
// cheaply for changes.
type Document struct {
	Path    string
	Fields  map[string]any
	Version int64
}

// BoolField reads a boolean field, tolerating a missing document or a
// missing/mistyped field.
func (d *Document) BoolField(key string) bool {
	if d == nil {
		return false
	}
	v, ok := d.Fields[key].(bool)
	return ok && v
}

// StringField reads a string field with the same relaxed semantics.
func (d *Document) StringField(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d.Fields[key].(string)
	return s
}

// Subscription is a live change feed for a single document path.
// Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Store is the narrow document-store contract.
//
//   - Get returns common.ErrorNotFound for absent paths.
//   - Set with merge=true merges the given fields into the existing
//     document field-by-field; with merge=false it replaces the document.
//   - Subscribe invokes fn with the latest document whenever it changes.
//     Callbacks for a subscription stop after Unsubscribe returns.
type Store interface {
	Get(ctx context.Context, path string) (*Document, error)
	Set(ctx context.Context, path string, fields map[string]any, merge bool) error
	Delete(ctx context.Context, path string) error
	Subscribe(path string, fn func(*Document)) (Subscription, error)
}
