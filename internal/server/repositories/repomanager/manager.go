package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/feeditems"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/verificationtokens"
)

// RepositoryManager vends repository implementations bound to an arbitrary
// DBTX, so services can run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	VerificationTokens(db dbx.DBTX) verificationtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
	FeedItems(db dbx.DBTX) feeditems.Repository
}
