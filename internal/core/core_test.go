package core

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rowhe/blogdata/internal/utils/databaseutils"
	"github.com/stretchr/testify/require"
)

// newTestCore wires a Core against a sqlmock connection. Expectations are
// matched as regular expressions, multi-line statements need (?s) patterns.
func newTestCore(t *testing.T) (*Core, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCore(db, log, databaseutils.NewSQLTemplate(db, 3*time.Second), databaseutils.NewSession(db, log), nil)
	return c, mock
}
