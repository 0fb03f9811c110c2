package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/avohilabs/destiin/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testEmployee(t *testing.T, repo *Repository, name, firstName string) *domain.Employee {
	t.Helper()

	employee := &domain.Employee{
		Name:          name,
		NamingSeries:  "HR-EMP-.YYYY.-",
		FirstName:     firstName,
		Gender:        "Other",
		DateOfBirth:   "1990-01-01",
		DateOfJoining: "2026-03-14",
		Status:        "Active",
		Company:       "Destiin",
	}
	if err := repo.InsertEmployee(context.Background(), employee); err != nil {
		t.Fatalf("inserting employee: %v", err)
	}
	return employee
}

func TestNew(t *testing.T) {
	t.Run("should apply migrations idempotently", func(t *testing.T) {
		path := t.TempDir() + "/destiin.db"

		first, err := New(path)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		first.Close()

		second, err := New(path)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer second.Close()

		var count int
		if err := second.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'employee_activity'`); err != nil {
			t.Fatalf("querying sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", count)
		}
	})
}

func TestRepository_InTx(t *testing.T) {
	t.Run("should commit when the function succeeds", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		ctx := context.Background()
		err := repo.InTx(ctx, func(tx domain.Store) error {
			return tx.CreateRole(ctx, "Employee")
		})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		exists, err := repo.RoleExists(ctx, "Employee")
		if err != nil {
			t.Fatalf("checking role: %v", err)
		}
		if !exists {
			t.Fatalf("\nwanted:\nrole to exist\ngot:\nmissing role")
		}
	})

	t.Run("should roll back when the function fails", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		ctx := context.Background()
		err := repo.InTx(ctx, func(tx domain.Store) error {
			if err := tx.CreateRole(ctx, "Employee"); err != nil {
				return err
			}
			return tx.CreateRole(ctx, "Employee")
		})
		if err == nil {
			t.Fatalf("\nwanted:\nduplicate role error\ngot:\nnil")
		}

		exists, err := repo.RoleExists(ctx, "Employee")
		if err != nil {
			t.Fatalf("checking role: %v", err)
		}
		if exists {
			t.Fatalf("\nwanted:\nrole to be rolled back\ngot:\nrole exists")
		}
	})
}
