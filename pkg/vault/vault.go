package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// Vault is a folder of markdown notes on local disk. It reconciles entries
// into note files: create when absent, full overwrite when present. It holds
// no state between calls; the filesystem is the source of truth.
type Vault struct {
	dir    string // vault root directory
	folder string // folder inside the vault for synced notes
}

// New creates a vault rooted at dir, placing synced notes under folder
func New(dir, folder string) *Vault {
	return &Vault{dir: dir, folder: folder}
}

// Note describes an existing note in the synced folder
type Note struct {
	Path    string // path relative to the vault root
	Title   string
	URL     string
	Starred int
	Tags    []string
	ToRead  bool
}

// Sync reconciles one entry into its note file and reports whether the
// file was created or overwritten. The resulting file content is exactly
// the serialized note; prior content and manual edits are not preserved.
func (v *Vault) Sync(_ context.Context, e domain.Entry) (status domain.SyncStatus, relPath string, err error) {
	relPath = FilePath(v.folder, e.Title)
	fullPath := filepath.Join(v.dir, relPath)

	note, err := RenderNote(e)
	if err != nil {
		return domain.StatusFailed, relPath, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return domain.StatusFailed, relPath, fmt.Errorf("create folder: %w", err)
	}

	status = domain.StatusCreated
	if _, statErr := os.Stat(fullPath); statErr == nil {
		status = domain.StatusUpdated
	}

	if err := os.WriteFile(fullPath, []byte(note), 0o644); err != nil { //nolint:gosec // notes are not sensitive
		return domain.StatusFailed, relPath, fmt.Errorf("write note %s: %w", relPath, err)
	}
	return status, relPath, nil
}

// List returns all markdown notes currently in the synced folder, with
// their front matter parsed. Notes with unparseable front matter are
// returned with only their path set.
func (v *Vault) List(ctx context.Context) ([]Note, error) {
	root := filepath.Join(v.dir, v.folder)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var notes []Note
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(v.dir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		note := Note{Path: relPath}

		data, err := os.ReadFile(path) //nolint:gosec // path comes from the walk
		if err != nil {
			return fmt.Errorf("read note %s: %w", relPath, err)
		}

		var fm FrontMatter
		if _, err := frontmatter.Parse(strings.NewReader(string(data)), &fm); err == nil {
			note.Title = fm.Title
			note.URL = fm.URL
			note.Starred = fm.Starred
			note.Tags = fm.Tags
			note.ToRead = fm.ToRead
		}

		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}
