package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-lotes/internal/domain"
)

func TestWrapErr_ConflictosDeConcurrencia(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		t.Run(code, func(t *testing.T) {
			err := wrapErr("batch.update", fmt.Errorf("exec: %w", &pgconn.PgError{Code: code}))
			assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
			assert.Contains(t, err.Error(), "batch.update")
		})
	}
}

func TestWrapErr_OtrosErroresSeConservan(t *testing.T) {
	orig := &pgconn.PgError{Code: "23503"}
	err := wrapErr("movement.insert", orig)
	assert.NotErrorIs(t, err, domain.ErrConcurrencyConflict)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
	assert.Nil(t, wrapErr("noop", nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("sin código")))
}
