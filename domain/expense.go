package domain

import "context"

// ExpenseRepository defines the interface for managing Expense Claim documents.
type ExpenseRepository interface {
	// InsertExpenseClaim stores a claim and its expense lines. The Name must be set by the caller.
	InsertExpenseClaim(ctx context.Context, claim *ExpenseClaim) error

	// GetExpenseClaim retrieves a claim with its expense lines ordered by Idx.
	GetExpenseClaim(ctx context.Context, name string) (*ExpenseClaim, error)
}

// ExpenseClaim is a request by an employee to be reimbursed for one or more expenses.
type ExpenseClaim struct {
	Name               string
	NamingSeries       string
	Employee           string
	ExpenseApprover    string
	TotalClaimedAmount float64
	GrandTotal         float64
	Remarks            string
	Expenses           []ExpenseClaimDetail
}

// ExpenseClaimDetail is a single expense line of a claim.
type ExpenseClaimDetail struct {
	Idx         int // 1-based position within the claim.
	ExpenseType string
	Description string
	Amount      float64
}
