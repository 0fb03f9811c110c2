package destiin

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// FilesURLPrefix is the URL path under which FilesDir is served.
const FilesURLPrefix = "/files/"

// storedFile is a file written to FilesDir by storeFile.
type storedFile struct {
	Name    string // Final file name on disk
	URL     string
	Path    string
	Hash    string
	Size    int64
	Created bool // False when identical content was already stored under Name
}

// fileUsers counts the uploads that currently hold a stored file, keyed by path.
// A path is only removed once its last holder gives up on it.
type fileUsers struct {
	mu    sync.Mutex
	paths map[string]*fileUse
}

type fileUse struct {
	holders int
	created bool // Written by one of the current holders
}

// contentHash returns the hex blake3 digest of content.
func contentHash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// sanitizeFilename reduces a client supplied name to a plain file name.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return name, nil
}

// storeFile writes content to FilesDir under filename. If a different file already uses the name,
// a short content hash is appended before the extension. Identical content is not written twice.
// Every stored file must be handed back with releaseFile.
func (app *App) storeFile(filename string, content []byte) (*storedFile, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	app.files.mu.Lock()
	defer app.files.mu.Unlock()

	stored, err := app.writeFile(name, content)
	if err != nil {
		return nil, err
	}
	if app.files.paths == nil {
		app.files.paths = make(map[string]*fileUse)
	}
	use, ok := app.files.paths[stored.Path]
	if !ok {
		use = &fileUse{}
		app.files.paths[stored.Path] = use
	}
	use.holders++
	use.created = use.created || stored.Created
	return stored, nil
}

// releaseFile gives up a file returned by storeFile. A file that is not kept is removed when
// it was written for an upload still in flight, no other upload holds it and no File document
// points at it.
func (app *App) releaseFile(ctx context.Context, stored *storedFile, keep bool) {
	app.files.mu.Lock()
	defer app.files.mu.Unlock()

	use, ok := app.files.paths[stored.Path]
	if !ok {
		return
	}
	use.holders--
	if keep {
		use.created = false
	}
	if use.holders > 0 {
		return
	}
	delete(app.files.paths, stored.Path)
	if !use.created {
		return
	}

	count, err := app.Repo.CountFilesByURL(ctx, stored.URL)
	if err != nil {
		app.Logger.Warn("checking stored file references", zap.String("path", stored.Path), zap.Error(err))
		return
	}
	if count > 0 {
		return
	}
	if err := os.Remove(stored.Path); err != nil {
		app.Logger.Warn("removing stored file", zap.String("path", stored.Path), zap.Error(err))
	}
}

func (app *App) writeFile(name string, content []byte) (*storedFile, error) {
	if err := os.MkdirAll(app.FilesDir, 0755); err != nil {
		return nil, fmt.Errorf("creating files dir %s: %w", app.FilesDir, err)
	}

	hash := contentHash(content)
	ext := filepath.Ext(name)
	candidates := []string{name, fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), hash[:6], ext)}

	for _, candidate := range candidates {
		path := filepath.Join(app.FilesDir, candidate)
		stored := &storedFile{
			Name: candidate,
			URL:  FilesURLPrefix + candidate,
			Path: path,
			Hash: hash,
			Size: int64(len(content)),
		}

		existing, err := os.ReadFile(path)
		switch {
		case err == nil:
			if bytes.Equal(existing, content) {
				return stored, nil
			}
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", path, err)
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			os.Remove(path)
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("closing %s: %w", path, err)
		}
		stored.Created = true
		return stored, nil
	}
	return nil, fmt.Errorf("file name %s is already taken", name)
}
