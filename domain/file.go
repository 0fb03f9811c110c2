package domain

import "context"

// FileRepository defines the interface for managing uploaded File documents.
type FileRepository interface {
	// InsertFile records an uploaded file. The Name must be set by the caller.
	InsertFile(ctx context.Context, file *File) error

	// AttachFile links a file to another document.
	AttachFile(ctx context.Context, name, doctype, docname string) error

	// GetFile retrieves a file record by name.
	GetFile(ctx context.Context, name string) (*File, error)

	// CountFilesByURL returns how many File documents point at url.
	CountFilesByURL(ctx context.Context, url string) (int, error)
}

// File is an uploaded file stored in the public files directory.
// Several File documents may share a FileURL when the same content is uploaded twice.
type File struct {
	Name              string
	FileName          string
	FileURL           string // Public URL, /files/<name>.
	IsPrivate         bool
	ContentHash       string // Hex blake3 digest of the content.
	Size              int64
	AttachedToDoctype string
	AttachedToName    string
}
