package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avohilabs/destiin/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.ExpenseRepository = (*Repository)(nil)

// dbExpenseClaim represents an expense claim header as stored in the database.
type dbExpenseClaim struct {
	Name               string  `db:"name"`
	NamingSeries       string  `db:"naming_series"`
	Employee           string  `db:"employee"`
	ExpenseApprover    string  `db:"expense_approver"`
	TotalClaimedAmount float64 `db:"total_claimed_amount"`
	GrandTotal         float64 `db:"grand_total"`
	Remarks            string  `db:"remarks"`
}

// dbExpenseClaimDetail represents a row of the expense_claim_detail child table.
type dbExpenseClaimDetail struct {
	Parent      string  `db:"parent"`
	Idx         int     `db:"idx"`
	ExpenseType string  `db:"expense_type"`
	Description string  `db:"description"`
	Amount      float64 `db:"amount"`
}

// InsertExpenseClaim stores the claim and its expense lines. Lines without an Idx are numbered
// by their position in the slice.
func (repo *Repository) InsertExpenseClaim(ctx context.Context, claim *domain.ExpenseClaim) error {
	header := &dbExpenseClaim{
		Name:               claim.Name,
		NamingSeries:       claim.NamingSeries,
		Employee:           claim.Employee,
		ExpenseApprover:    claim.ExpenseApprover,
		TotalClaimedAmount: claim.TotalClaimedAmount,
		GrandTotal:         claim.GrandTotal,
		Remarks:            claim.Remarks,
	}
	query := `INSERT INTO expense_claim (name, naming_series, employee, expense_approver, total_claimed_amount, grand_total, remarks)
		      VALUES (:name, :naming_series, :employee, :expense_approver, :total_claimed_amount, :grand_total, :remarks)`

	_, err := sqlx.NamedExecContext(ctx, repo.ext, query, header)
	if err != nil {
		return fmt.Errorf("inserting expense claim %s: %w", claim.Name, err)
	}

	detailQuery := `INSERT INTO expense_claim_detail (parent, idx, expense_type, description, amount)
		            VALUES (:parent, :idx, :expense_type, :description, :amount)`
	for i, expense := range claim.Expenses {
		idx := expense.Idx
		if idx == 0 {
			idx = i + 1
		}
		detail := &dbExpenseClaimDetail{
			Parent:      claim.Name,
			Idx:         idx,
			ExpenseType: expense.ExpenseType,
			Description: expense.Description,
			Amount:      expense.Amount,
		}
		if _, err := sqlx.NamedExecContext(ctx, repo.ext, detailQuery, detail); err != nil {
			return fmt.Errorf("inserting expense %d of claim %s: %w", idx, claim.Name, err)
		}
	}
	return nil
}

// GetExpenseClaim retrieves a claim and its expense lines.
func (repo *Repository) GetExpenseClaim(ctx context.Context, name string) (*domain.ExpenseClaim, error) {
	var header dbExpenseClaim
	query := `SELECT name, naming_series, employee, expense_approver, total_claimed_amount, grand_total, remarks
		      FROM expense_claim WHERE name = ?`

	err := sqlx.GetContext(ctx, repo.ext, &header, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting expense claim %s: %w", name, err)
	}

	var details []*dbExpenseClaimDetail
	err = sqlx.SelectContext(ctx, repo.ext, &details,
		`SELECT parent, idx, expense_type, description, amount FROM expense_claim_detail WHERE parent = ? ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("getting expenses of claim %s: %w", name, err)
	}

	claim := &domain.ExpenseClaim{
		Name:               header.Name,
		NamingSeries:       header.NamingSeries,
		Employee:           header.Employee,
		ExpenseApprover:    header.ExpenseApprover,
		TotalClaimedAmount: header.TotalClaimedAmount,
		GrandTotal:         header.GrandTotal,
		Remarks:            header.Remarks,
		Expenses:           make([]domain.ExpenseClaimDetail, len(details)),
	}
	for i, d := range details {
		claim.Expenses[i] = domain.ExpenseClaimDetail{
			Idx:         d.Idx,
			ExpenseType: d.ExpenseType,
			Description: d.Description,
			Amount:      d.Amount,
		}
	}
	return claim, nil
}
