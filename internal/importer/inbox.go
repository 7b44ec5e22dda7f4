// Package importer reads bank CSV exports and posts their rows to the journal.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// processedDir is the inbox subdirectory archived exports are moved to.
const processedDir = "processed"

// Inbox is the directory bank exports are dropped into. A file stays there
// until every one of its rows is in the journal.
type Inbox struct {
	Dir string
}

// Pending returns the paths of the CSV exports waiting in the inbox, sorted by
// file name so monthly exports post in order. A missing inbox has nothing
// pending.
func (b Inbox) Pending() ([]string, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(b.Dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Archive moves an imported export to the processed subdirectory.
func (b Inbox) Archive(path string) error {
	dir := filepath.Join(b.Dir, processedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	name := filepath.Base(path)
	if err := os.Rename(path, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	return nil
}

// FileResult is the outcome of importing one export.
type FileResult struct {
	Path   string
	Format string
	Result
}

// ImportFile posts the rows of the export at path. An empty format picks the
// layout from the file's header row.
func (im *Importer) ImportFile(ctx context.Context, owner, path, format string) (FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("opening %s: %w", path, err)
	}

	var p *LayoutParser
	if format != "" {
		p, err = ParserFor(format)
	} else {
		var header []string
		if header, err = readHeader(data); err == nil {
			p, err = Detect(header)
		}
	}
	if err != nil {
		return FileResult{}, err
	}

	res, err := im.postFrom(ctx, owner, p, bytes.NewReader(data), path)
	return FileResult{Path: path, Format: p.Format(), Result: res}, err
}

// ImportInbox imports every pending export in box for owner. Each file is
// archived once all of its rows are posted unless keep is set; a failing file
// stops the run and stays in the inbox.
func (im *Importer) ImportInbox(ctx context.Context, owner string, box Inbox, format string, keep bool) ([]FileResult, error) {
	paths, err := box.Pending()
	if err != nil {
		return nil, err
	}

	var out []FileResult
	for _, path := range paths {
		fr, err := im.ImportFile(ctx, owner, path, format)
		if err != nil {
			return out, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
		}
		if !keep {
			if err := box.Archive(path); err != nil {
				return out, err
			}
		}
		out = append(out, fr)
	}
	return out, nil
}
