package forum

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced Section, Forum, Topic, Post
	// or User does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the store rejects the transaction because
	// of a serialization or lock conflict. Callers may retry.
	ErrConflict = errors.New("concurrency conflict")
	// ErrInvariant marks a structurally impossible state found while
	// restoring cached aggregates. The transaction is always rolled back.
	ErrInvariant = errors.New("invariant violation")
)

// Postgres SQLSTATE codes treated as retryable conflicts.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505" // 并发首次插入同一唯一键
)

func notFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// lookup converts gorm.ErrRecordNotFound into ErrNotFound.
func lookup(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return err
}

// classify maps driver errors escaping a transaction onto the package taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvariant) || errors.Is(err, ErrConflict) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}
