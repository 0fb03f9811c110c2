package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store groups every repository the application needs. A Store may be bound to a
// database transaction, in which case all of its methods share that transaction.
type Store interface {
	ActivityRepository
	BookingRepository
	WorkflowRepository
	EmployeeRepository
	ExpenseRepository
	FileRepository
	LogRepository
	NamingRepository
}

// NamingRepository generates document names from naming series such as "HR-EMP-.YYYY.-".
type NamingRepository interface {
	// NextName reserves and returns the next name of the series, resolving date placeholders against now.
	NextName(ctx context.Context, series string, now time.Time) (string, error)
}

// TxStore is a Store that can run a unit of work atomically.
type TxStore interface {
	Store

	// InTx runs fn against a transaction-bound Store. The transaction is committed
	// when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
