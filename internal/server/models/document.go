package models

import "time"

// Document is a versioned per-user record addressed by path. AccessUIDs
// lists every account allowed to read it: the owner plus any collaborators.
// Version increases monotonically with every write so clients can poll for
// changes cheaply.
type Document struct {
	Path       string
	OwnerUID   string
	AccessUIDs []string
	Fields     map[string]any
	Version    int64
	UpdatedAt  time.Time
}

// AccessibleBy reports whether uid may read the document.
func (d *Document) AccessibleBy(uid string) bool {
	for _, u := range d.AccessUIDs {
		if u == uid {
			return true
		}
	}
	return false
}
