package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Cocina-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryable serialization_failure (40001) o deadlock_detected (40P01).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func aborted(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrTransactionAborted, op, err)
}

// classify convierte fallas de serialización, deadlock o contexto vencido en
// domain.ErrTransactionAborted; el resto de los errores pasa intacto.
func classify(err error) error {
	if isRetryable(err) || isContextErr(err) {
		return aborted("transaction", err)
	}
	return err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// nullIfZero LIMIT NULL equivale a sin límite.
func nullIfZero(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
