// Package postgres предоставляет доступ к PostgreSQL через ограниченный пул соединений pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
	"gonotes/pkg/pool"
)

// Константы для сообщений logger.
const (
	LogConnecting        = "connecting to Postgres database"
	LogConnected         = "successfully connected to Postgres"
	LogClosing           = "closing Postgres connections"
	LogMigrationsApplied = "database migrations successfully applied"
	LogDiscardConn       = "discarding interrupted connection"
	LogDiscardBroken     = "discarding broken connection"
	LogRollbackFailed    = "failed to roll back transaction"
)

// Константы для сообщений об ошибках.
const (
	ErrParseConfig   = "failed to parse connection config"
	ErrConnect       = "failed to connect to database"
	ErrPingDatabase  = "failed to ping database"
	ErrCreatePool    = "failed to create connection pool"
	ErrAcquireConn   = "failed to acquire connection"
	ErrBeginTx       = "failed to begin transaction"
	ErrCommitTx      = "failed to commit transaction"
	ErrClosePrimary  = "failed to close primary connection"
	ErrCloseIdleConn = "failed to close idle connections"
)

// ErrTimeout сообщает, что операция с базой не уложилась в срок запроса.
var ErrTimeout = errors.New("database operation timed out")

// Conn - подмножество *pgx.Conn, которым пользуются репозитории.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// closedReporter сообщает, что соединение уже закрыто драйвером. *pgx.Conn ему удовлетворяет.
type closedReporter interface {
	IsClosed() bool
}

// Database владеет основным соединением и пулом рабочих соединений.
// Основное соединение используется только для обслуживания схемы.
type Database struct {
	primary Conn
	pool    *pool.Pool[Conn]
}

// New подключается к Postgres по dsn и создает пул не более чем из maxConn соединений.
func New(ctx context.Context, dsn string, maxConn int) (*Database, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogConnecting, zap.Int("max_conn", maxConn))

	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}

	open := func(ctx context.Context) (Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, connCfg.Copy())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConnect, err)
		}
		return conn, nil
	}

	return NewWithOpener(ctx, open, maxConn)
}

// NewWithOpener создает Database поверх произвольного способа открытия соединений.
func NewWithOpener(ctx context.Context, open pool.Opener[Conn], maxConn int) (*Database, error) {
	log := logger.Log(ctx)

	p, err := pool.New(open, maxConn)
	if err != nil {
		log.Error(ctx, ErrCreatePool, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreatePool, err)
	}

	primary, err := open(ctx)
	if err != nil {
		log.Error(ctx, ErrConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrConnect, err)
	}

	if err := primary.Ping(ctx); err != nil {
		_ = primary.Close(ctx)
		log.Error(ctx, ErrPingDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingDatabase, err)
	}

	log.Info(ctx, LogConnected)
	return &Database{primary: primary, pool: p}, nil
}

// Primary возвращает основное соединение.
func (db *Database) Primary() Conn {
	return db.primary
}

// WithConn выполняет fn на соединении из пула и возвращает его обратно.
func (db *Database) WithConn(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w: %w", ErrAcquireConn, ErrTimeout, err)
		}
		return fmt.Errorf("%s: %w", ErrAcquireConn, err)
	}

	err = fn(ctx, conn)

	// pgx закрывает соединение, если контекст отменен посреди запроса.
	switch {
	case ctx.Err() != nil:
		logger.Log(ctx).Debug(ctx, LogDiscardConn, zap.Error(ctx.Err()))
		db.pool.Discard(context.WithoutCancel(ctx), conn)
	case isBroken(conn, err):
		logger.Log(ctx).Warn(ctx, LogDiscardBroken, zap.Error(err))
		db.pool.Discard(ctx, conn)
	default:
		db.pool.Release(ctx, conn)
	}

	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// isBroken определяет соединение, которое нельзя возвращать в пул:
// закрытое драйвером или оборванное на уровне сети.
func isBroken(conn Conn, err error) bool {
	if c, ok := conn.(closedReporter); ok && c.IsClosed() {
		return true
	}
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// WithTx выполняет fn в транзакции: commit при успехе, rollback при ошибке или панике.
func (db *Database) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return db.WithConn(ctx, func(ctx context.Context, conn Conn) error {
		return InTx(ctx, conn, fn)
	})
}

// TxBeginner открывает транзакции. Ему удовлетворяют *pgx.Conn и pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx выполняет fn в транзакции на переданном соединении.
func InTx(ctx context.Context, conn TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			rollback(ctx, tx)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrCommitTx, err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Log(ctx).Error(ctx, LogRollbackFailed, zap.Error(err))
	}
}

// Ping проверяет доступность базы через соединение из пула.
func (db *Database) Ping(ctx context.Context) error {
	return db.WithConn(ctx, func(ctx context.Context, conn Conn) error {
		if err := conn.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", ErrPingDatabase, err)
		}
		return nil
	})
}

// Stats возвращает состояние пула соединений.
func (db *Database) Stats() pool.Stats {
	return db.pool.Stats()
}

// Close закрывает простаивающие соединения пула и основное соединение.
func (db *Database) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, LogClosing)

	var errs []error
	if err := db.pool.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ErrCloseIdleConn, err))
	}
	if err := db.primary.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ErrClosePrimary, err))
	}
	return errors.Join(errs...)
}
