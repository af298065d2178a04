package postgres_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	pgdb "gonotes/pkg/db/postgres"
	"gonotes/pkg/logger"
)

// newTestDatabase собирает Database поверх двух pgxmock-соединений:
// первое становится основным, второе обслуживает все запросы репозиториев.
func newTestDatabase(t *testing.T) (context.Context, *pgdb.Database, pgxmock.PgxConnIface) {
	t.Helper()

	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	ctx := logger.NewContext(context.Background(), testLogger)

	primary, err := pgxmock.NewConn()
	require.NoError(t, err)
	worker, err := pgxmock.NewConn()
	require.NoError(t, err)

	conns := []pgdb.Conn{primary, worker}
	open := func(context.Context) (pgdb.Conn, error) {
		require.NotEmpty(t, conns, "unexpected extra connection")
		conn := conns[0]
		conns = conns[1:]
		return conn, nil
	}

	db, err := pgdb.NewWithOpener(ctx, open, 2)
	require.NoError(t, err)

	return ctx, db, worker
}
