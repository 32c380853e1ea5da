package core

import (
	"database/sql"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/avatar"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"log/slog"
)

var NoRecordFound = xerrors.Message("No record found")

// Core is the persistence boundary for blogs, authors, profiles and
// entries. Uniqueness and cascade rules are enforced by the database
// schema; Core validates fields before every write and maps constraint
// violations to the sentinel errors declared next to each operation.
type Core struct {
	log         *slog.Logger
	db          *sql.DB
	sqlTemplate *databaseutils.SQLTemplate
	session     databaseutils.Session
	avatars     *avatar.Pipeline
}

func NewCore(dbConn *sql.DB, log *slog.Logger, sqlTemplate *databaseutils.SQLTemplate, session databaseutils.Session, avatars *avatar.Pipeline) *Core {
	return &Core{
		log:         log,
		db:          dbConn,
		sqlTemplate: sqlTemplate,
		session:     session,
		avatars:     avatars,
	}
}
