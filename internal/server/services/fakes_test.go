package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	documentsrepo "github.com/dmitrijs2005/tripkeeper/internal/server/repositories/documents"
	feeditemsrepo "github.com/dmitrijs2005/tripkeeper/internal/server/repositories/feeditems"
	refreshtokensrepo "github.com/dmitrijs2005/tripkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/tripkeeper/internal/server/repositories/users"
	verificationtokensrepo "github.com/dmitrijs2005/tripkeeper/internal/server/repositories/verificationtokens"
)

// --- shared helpers and fakes ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr error
	verified  []string
	deleted   []string
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-" + u.Email
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) MarkEmailVerified(ctx context.Context, id string) error {
	f.verified = append(f.verified, id)
	if u, ok := f.byID[id]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	if u, ok := f.byID[id]; ok {
		delete(f.byEmail, u.Email)
		delete(f.byID, id)
	}
	return nil
}

type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	deleted   []string
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	delete(f.tokens, token)
	return nil
}

type fakeVerificationRepo struct {
	tokens map[string]*models.VerificationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: map[string]*models.VerificationToken{}}
}

func (f *fakeVerificationRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.tokens[token] = &models.VerificationToken{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeVerificationRepo) Find(ctx context.Context, token string) (*models.VerificationToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeVerificationRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeDocsRepo struct {
	docs map[string]*models.Document
}

func newFakeDocsRepo() *fakeDocsRepo {
	return &fakeDocsRepo{docs: map[string]*models.Document{}}
}

func (f *fakeDocsRepo) Get(ctx context.Context, path string) (*models.Document, error) {
	if d, ok := f.docs[path]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocsRepo) ListByPrefix(ctx context.Context, prefix string) ([]*models.Document, error) {
	var paths []string
	for p := range f.docs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	docs := make([]*models.Document, 0, len(paths))
	for _, p := range paths {
		cp := *f.docs[p]
		docs = append(docs, &cp)
	}
	return docs, nil
}

func (f *fakeDocsRepo) Upsert(ctx context.Context, doc *models.Document) (int64, error) {
	existing, ok := f.docs[doc.Path]
	if !ok {
		cp := *doc
		cp.Version = 1
		f.docs[doc.Path] = &cp
		return 1, nil
	}
	if doc.Version != 0 && doc.Version != existing.Version {
		return 0, common.ErrVersionConflict
	}
	cp := *doc
	cp.Version = existing.Version + 1
	f.docs[doc.Path] = &cp
	return cp.Version, nil
}

func (f *fakeDocsRepo) UpdateAccess(ctx context.Context, prefix string, accessUIDs []string) error {
	for p, d := range f.docs {
		if strings.HasPrefix(p, prefix) {
			d.AccessUIDs = accessUIDs
			d.Version++
		}
	}
	return nil
}

func (f *fakeDocsRepo) Delete(ctx context.Context, path string) error {
	delete(f.docs, path)
	return nil
}

func (f *fakeDocsRepo) DeleteByPrefix(ctx context.Context, prefix string) error {
	for p := range f.docs {
		if strings.HasPrefix(p, prefix) {
			delete(f.docs, p)
		}
	}
	return nil
}

func (f *fakeDocsRepo) DeleteByOwner(ctx context.Context, uid string) error {
	for p, d := range f.docs {
		if d.OwnerUID == uid {
			delete(f.docs, p)
		}
	}
	return nil
}

type fakeFeedRepo struct {
	items []*models.FeedItem
}

func (f *fakeFeedRepo) List(ctx context.Context, uid string) ([]*models.FeedItem, error) {
	var out []*models.FeedItem
	for _, i := range f.items {
		if i.UserUID == uid {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) Create(ctx context.Context, item *models.FeedItem) error {
	cp := *item
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeFeedRepo) MarkRead(ctx context.Context, uid string, id string) error {
	for _, i := range f.items {
		if i.UserUID == uid && i.ID == id {
			i.Read = true
		}
	}
	return nil
}

func (f *fakeFeedRepo) Delete(ctx context.Context, uid string, id string) error {
	out := f.items[:0]
	for _, i := range f.items {
		if !(i.UserUID == uid && i.ID == id) {
			out = append(out, i)
		}
	}
	f.items = out
	return nil
}

func (f *fakeFeedRepo) Clear(ctx context.Context, uid string) error {
	out := f.items[:0]
	for _, i := range f.items {
		if i.UserUID != uid {
			out = append(out, i)
		}
	}
	f.items = out
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	v *fakeVerificationRepo
	d *fakeDocsRepo
	f *fakeFeedRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		r: newFakeRefreshRepo(),
		v: newFakeVerificationRepo(),
		d: newFakeDocsRepo(),
		f: &fakeFeedRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) VerificationTokens(db dbx.DBTX) verificationtokensrepo.Repository {
	return m.v
}
func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository { return m.d }
func (m *fakeRepoManager) FeedItems(db dbx.DBTX) feeditemsrepo.Repository { return m.f }
