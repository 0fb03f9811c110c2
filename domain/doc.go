// Package domain defines the core data structures of the Destiin travel and expense service.
// It contains the document models, such as EmployeeActivity, TravelBooking, Workflow and ExpenseClaim,
// as well as the repository interfaces that define the contracts for data persistence.
//
// This package serves as the central point for application-wide types,
// ensuring a clean separation between the business rules in the root package and
// implementation details such as the database or the HTTP transport. By defining interfaces for repositories,
// the domain package remains independent of the data storage technology.
package domain
