package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avohilabs/destiin/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.FileRepository = (*Repository)(nil)

// dbFile represents an uploaded file record.
type dbFile struct {
	Name              string `db:"name"`
	FileName          string `db:"file_name"`
	FileURL           string `db:"file_url"`
	IsPrivate         bool   `db:"is_private"`
	ContentHash       string `db:"content_hash"`
	Size              int64  `db:"file_size"`
	AttachedToDoctype string `db:"attached_to_doctype"`
	AttachedToName    string `db:"attached_to_name"`
}

// InsertFile records an uploaded file.
func (repo *Repository) InsertFile(ctx context.Context, file *domain.File) error {
	query := `INSERT INTO file (name, file_name, file_url, is_private, content_hash, file_size, attached_to_doctype, attached_to_name)
		      VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.ext.ExecContext(ctx, query, file.Name, file.FileName, file.FileURL, boolToInt(file.IsPrivate),
		file.ContentHash, file.Size, file.AttachedToDoctype, file.AttachedToName)
	if err != nil {
		return fmt.Errorf("inserting file %s: %w", file.FileName, err)
	}
	return nil
}

// AttachFile links the file to a document.
func (repo *Repository) AttachFile(ctx context.Context, name, doctype, docname string) error {
	query := `UPDATE file SET attached_to_doctype = ?, attached_to_name = ? WHERE name = ?`

	result, err := repo.ext.ExecContext(ctx, query, doctype, docname, name)
	if err != nil {
		return fmt.Errorf("attaching file %s to %s %s: %w", name, doctype, docname, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetFile retrieves a file record by name.
func (repo *Repository) GetFile(ctx context.Context, name string) (*domain.File, error) {
	var row dbFile
	query := `SELECT name, file_name, file_url, is_private, content_hash, file_size, attached_to_doctype, attached_to_name
		      FROM file WHERE name = ?`

	err := sqlx.GetContext(ctx, repo.ext, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting file %s: %w", name, err)
	}

	file := domain.File(row)
	return &file, nil
}

// CountFilesByURL returns how many file records share the given public URL.
func (repo *Repository) CountFilesByURL(ctx context.Context, url string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.ext, &count, `SELECT COUNT(*) FROM file WHERE file_url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("counting files for %s: %w", url, err)
	}
	return count, nil
}
