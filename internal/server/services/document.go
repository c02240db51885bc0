package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/repomanager"
)

// DocumentService implements the path-addressed document store with
// per-document access lists. Trip documents ("trips/<id>") carry a
// "collaborators" field; the access list of a trip and all its
// sub-documents is kept in sync with it on every write.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, repomanager: m}
}

// Get returns the document at path if uid may read it. Inaccessible documents
// are indistinguishable from absent ones.
func (s *DocumentService) Get(ctx context.Context, uid string, path string) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !doc.AccessibleBy(uid) {
		return nil, common.ErrorNotFound
	}
	return doc, nil
}

// List returns every document under prefix that uid may read.
func (s *DocumentService) List(ctx context.Context, uid string, prefix string) ([]*models.Document, error) {
	docs, err := s.repomanager.Documents(s.db).ListByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.AccessibleBy(uid) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// Set writes the document at path and returns the new version. With merge the
// incoming fields are laid over the stored ones and the write is conditional
// on the version observed during the read, so a concurrent update surfaces as
// ErrVersionConflict instead of silently dropping fields.
func (s *DocumentService) Set(ctx context.Context, uid string, path string, fields map[string]any, merge bool) (int64, error) {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return 0, common.ErrorValidation
	}

	docRepo := s.repomanager.Documents(s.db)

	existing, err := docRepo.Get(ctx, path)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return 0, err
	}
	if existing != nil && !existing.AccessibleBy(uid) {
		return 0, common.ErrorForbidden
	}

	doc := &models.Document{Path: path, OwnerUID: uid, Fields: fields}
	if existing != nil {
		doc.OwnerUID = existing.OwnerUID
		if merge {
			doc.Fields = mergeFields(existing.Fields, fields)
			doc.Version = existing.Version
		}
	}

	access, err := s.resolveAccess(ctx, uid, doc)
	if err != nil {
		return 0, err
	}
	doc.AccessUIDs = access

	var version int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.Documents(tx)

		v, err := txRepo.Upsert(ctx, doc)
		if err != nil {
			return err
		}
		version = v

		// A changed collaborator set on a trip must propagate to every
		// sub-document, otherwise new collaborators cannot see locations
		// and flights that already exist.
		if isTripRoot(path) && (existing == nil || !sameAccess(existing.AccessUIDs, access)) {
			if err := txRepo.UpdateAccess(ctx, path+"/", access); err != nil {
				return fmt.Errorf("error propagating access: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

// Delete removes the document at path and, for trip documents, everything
// underneath it.
func (s *DocumentService) Delete(ctx context.Context, uid string, path string) error {
	existing, err := s.repomanager.Documents(s.db).Get(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if !existing.AccessibleBy(uid) {
		return common.ErrorForbidden
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.Documents(tx)
		if isTripRoot(path) {
			if err := txRepo.DeleteByPrefix(ctx, path+"/"); err != nil {
				return err
			}
		}
		return txRepo.Delete(ctx, path)
	})
}

// resolveAccess computes the access list for a document about to be written.
// Trip documents derive it from their collaborators field; sub-documents
// inherit the parent trip's list; everything else is private to its owner.
func (s *DocumentService) resolveAccess(ctx context.Context, uid string, doc *models.Document) ([]string, error) {
	if isTripRoot(doc.Path) {
		access := []string{doc.OwnerUID}
		if raw, ok := doc.Fields["collaborators"].([]any); ok {
			for _, c := range raw {
				if id, ok := c.(string); ok && id != doc.OwnerUID {
					access = append(access, id)
				}
			}
		}
		return access, nil
	}

	if parent := parentTripPath(doc.Path); parent != "" {
		trip, err := s.repomanager.Documents(s.db).Get(ctx, parent)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorValidation
			}
			return nil, err
		}
		if !trip.AccessibleBy(uid) {
			return nil, common.ErrorForbidden
		}
		return trip.AccessUIDs, nil
	}

	return []string{doc.OwnerUID}, nil
}

func isTripRoot(path string) bool {
	return strings.HasPrefix(path, "trips/") && strings.Count(path, "/") == 1
}

func parentTripPath(path string) string {
	if !strings.HasPrefix(path, "trips/") {
		return ""
	}
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "/" + parts[1]
}

func mergeFields(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

func sameAccess(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			return false
		}
	}
	return true
}
