// Package db provides the database layer for the Destiin service.
// It encapsulates all interactions with the underlying SQLite database, managing
// data persistence for employee activities, travel bookings, workflows, employees,
// expense claims, uploaded files, naming series and the error log.
//
// This package is responsible for:
//   - Establishing and managing database connections (`db.go`).
//   - Defining database-specific data structures that map to SQL table schemas.
//   - Implementing the repository interfaces of the `domain` package.
//   - Handling data conversion between domain structs and database-friendly structs,
//     including the use of `sql.Null*` types for nullable fields.
//   - Generating document names from naming series (`series.go`).
//   - Managing database migrations (`migrations/`).
package db
