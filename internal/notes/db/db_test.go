package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"gonotes/internal/notes/config"
	"gonotes/internal/notes/db"
	"gonotes/pkg/db/postgres"
	"gonotes/pkg/logger"
	"gonotes/pkg/pool"
)

const migrationsDir = "./migrations"

func safeUnpatch(t *testing.T, p *mpatch.Patch) {
	t.Helper()
	if err := p.Unpatch(); err != nil {
		t.Errorf("failed to unpatch: %v", err)
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	log, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), log)
}

func testConfig() *config.PostgresConfig {
	return &config.PostgresConfig{
		Host:            "testhost",
		Port:            5432,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		SSLMode:         "disable",
		MaxConn:         2,
		ConnectAttempts: 3,
		ConnectBackoff:  time.Millisecond,
	}
}

// mockDatabase собирает Database из двух pgxmock-соединений и возвращает основное.
func mockDatabase(t *testing.T, ctx context.Context) (*postgres.Database, pgxmock.PgxConnIface) {
	t.Helper()

	primary, err := pgxmock.NewConn()
	require.NoError(t, err)
	worker, err := pgxmock.NewConn()
	require.NoError(t, err)

	conns := []postgres.Conn{primary, worker}
	database, err := postgres.NewWithOpener(ctx, func(context.Context) (postgres.Conn, error) {
		require.NotEmpty(t, conns)
		conn := conns[0]
		conns = conns[1:]
		return conn, nil
	}, 2)
	require.NoError(t, err)

	return database, primary
}

func patchMigrateDSN(t *testing.T, migrateErr error) *string {
	t.Helper()
	var gotPath string

	p, err := mpatch.PatchMethod(postgres.MigrateDSN, func(_ context.Context, _ string, path string) error {
		gotPath = path
		return migrateErr
	})
	require.NoError(t, err)
	t.Cleanup(func() { safeUnpatch(t, p) })

	return &gotPath
}

func patchNew(t *testing.T, fn func(ctx context.Context, dsn string, maxConn int) (*postgres.Database, error)) {
	t.Helper()

	p, err := mpatch.PatchMethod(postgres.New, fn)
	require.NoError(t, err)
	t.Cleanup(func() { safeUnpatch(t, p) })
}

func TestNew(t *testing.T) {
	t.Run("Миграции схемы и подключение", func(t *testing.T) {
		ctx := testContext(t)
		database, _ := mockDatabase(t, ctx)

		path := patchMigrateDSN(t, nil)
		patchNew(t, func(_ context.Context, dsn string, maxConn int) (*postgres.Database, error) {
			assert.Contains(t, dsn, "host=testhost")
			assert.Equal(t, 2, maxConn)
			return database, nil
		})

		got, err := db.New(ctx, testConfig(), migrationsDir)
		require.NoError(t, err)
		assert.Same(t, database, got.Database())
		assert.True(t, strings.HasPrefix(*path, "file:///"), *path)
		assert.True(t, strings.HasSuffix(*path, "/migrations"), *path)
	})

	t.Run("Ошибка миграций схемы прерывает запуск", func(t *testing.T) {
		ctx := testContext(t)
		patchMigrateDSN(t, errors.New("dirty database version 2"))

		connectCalled := false
		patchNew(t, func(context.Context, string, int) (*postgres.Database, error) {
			connectCalled = true
			return nil, errors.New("unexpected")
		})

		got, err := db.New(ctx, testConfig(), migrationsDir)
		assert.Nil(t, got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), db.ErrDBMigrations)
		assert.False(t, connectCalled)
	})

	t.Run("Повтор подключения", func(t *testing.T) {
		ctx := testContext(t)
		database, _ := mockDatabase(t, ctx)
		patchMigrateDSN(t, nil)

		attempts := 0
		patchNew(t, func(context.Context, string, int) (*postgres.Database, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection refused")
			}
			return database, nil
		})

		got, err := db.New(ctx, testConfig(), migrationsDir)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, 3, attempts)
	})

	t.Run("Попытки подключения исчерпаны", func(t *testing.T) {
		ctx := testContext(t)
		patchMigrateDSN(t, nil)

		attempts := 0
		patchNew(t, func(context.Context, string, int) (*postgres.Database, error) {
			attempts++
			return nil, errors.New("connection refused")
		})

		_, err := db.New(ctx, testConfig(), migrationsDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), db.ErrDBConnection)
		assert.Equal(t, 3, attempts)
	})
}

func TestDB_RunMigrations(t *testing.T) {
	ctx := testContext(t)

	t.Run("Индексы применяются, ANALYZE уже выполнен", func(t *testing.T) {
		database, primary := mockDatabase(t, ctx)
		patchMigrateDSN(t, nil)
		patchNew(t, func(context.Context, string, int) (*postgres.Database, error) { return database, nil })

		notesDB, err := db.New(ctx, testConfig(), migrationsDir)
		require.NoError(t, err)

		primary.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

		primary.ExpectQuery(`SELECT EXISTS`).WithArgs(db.MigrationPerformanceIndexes).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		primary.ExpectBegin()
		for _, index := range []string{
			"idx_notes_user_id ON", "idx_notes_updated_at ON", "idx_notes_user_updated ON",
			"idx_notes_id_user ON", "idx_users_username ON",
		} {
			primary.ExpectExec("CREATE INDEX IF NOT EXISTS " + index).
				WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		}
		primary.ExpectExec("INSERT INTO migrations").WithArgs(db.MigrationPerformanceIndexes).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		primary.ExpectCommit()

		primary.ExpectQuery(`SELECT EXISTS`).WithArgs(db.MigrationAnalyzeTables).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		report, err := notesDB.RunMigrations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{db.MigrationPerformanceIndexes}, report.Applied)
		assert.Equal(t, []string{db.MigrationAnalyzeTables}, report.Skipped)

		require.NoError(t, primary.ExpectationsWereMet())
	})

	t.Run("Сбой миграции откатывается", func(t *testing.T) {
		database, primary := mockDatabase(t, ctx)
		patchMigrateDSN(t, nil)
		patchNew(t, func(context.Context, string, int) (*postgres.Database, error) { return database, nil })

		notesDB, err := db.New(ctx, testConfig(), migrationsDir)
		require.NoError(t, err)

		primary.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		primary.ExpectQuery(`SELECT EXISTS`).WithArgs(db.MigrationPerformanceIndexes).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		primary.ExpectBegin()
		primary.ExpectExec("CREATE INDEX IF NOT EXISTS idx_notes_user_id").
			WillReturnError(errors.New("relation \"notes\" does not exist"))
		primary.ExpectRollback()

		report, err := notesDB.RunMigrations(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), db.ErrNamedMigrations)
		assert.Contains(t, err.Error(), db.MigrationPerformanceIndexes)
		assert.Empty(t, report.Applied)

		require.NoError(t, primary.ExpectationsWereMet())
	})
}

func TestDB_HealthAndClose(t *testing.T) {
	ctx := testContext(t)
	database, primary := mockDatabase(t, ctx)
	patchMigrateDSN(t, nil)
	patchNew(t, func(context.Context, string, int) (*postgres.Database, error) { return database, nil })

	notesDB, err := db.New(ctx, testConfig(), migrationsDir)
	require.NoError(t, err)

	assert.Equal(t, 2, notesDB.Stats().Max)

	primary.ExpectClose()
	require.NoError(t, notesDB.Close(ctx))

	err = notesDB.Ping(ctx)
	require.ErrorIs(t, err, pool.ErrClosed)
	assert.Contains(t, err.Error(), db.ErrDBCheckConnection)
}

func TestMigrations(t *testing.T) {
	migrations := db.Migrations()
	require.Len(t, migrations, 2)
	assert.Equal(t, db.MigrationPerformanceIndexes, migrations[0].Name)
	assert.Equal(t, db.MigrationAnalyzeTables, migrations[1].Name)
	for _, m := range migrations {
		assert.NotNil(t, m.Up)
	}
}
