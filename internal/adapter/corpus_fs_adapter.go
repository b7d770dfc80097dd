// Package adapter contains the filesystem, storage and process adapters the
// corpus scanner relies on.
package adapter

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// CorpusFSAdapter abstracts filesystem access for the corpus walker and the
// target filter. It intentionally hides direct `os` access so the walk logic
// can be tested against injected failures.
type CorpusFSAdapter interface {
	// ReadDir lists the direct children of dir sorted by name. Entries are
	// not followed through symbolic links.
	ReadDir(dir m.Path) ([]fs.DirEntry, error)

	// Stat returns metadata for path, following symbolic links.
	Stat(path m.Path) (os.FileInfo, error)

	// ReadHead returns up to maxLines leading lines of the file at path.
	ReadHead(path m.Path, maxLines int) ([]string, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path

	// JoinRel resolves a slash separated corpus path against root.
	JoinRel(root m.Path, rel string) m.Path
}

// LocalCorpusFSAdapter is the os backed CorpusFSAdapter.
type LocalCorpusFSAdapter struct{}

// NewLocalCorpusFSAdapter constructs a LocalCorpusFSAdapter.
func NewLocalCorpusFSAdapter() *LocalCorpusFSAdapter {
	return &LocalCorpusFSAdapter{}
}

// ReadDir lists dir. On a partial read the entries read so far are returned
// together with the error.
func (a *LocalCorpusFSAdapter) ReadDir(dir m.Path) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(string(dir))

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, err
}

// Stat returns os.FileInfo metadata for the given path.
func (a *LocalCorpusFSAdapter) Stat(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ReadHead reads the first maxLines lines of a file. Lines longer than
// maxHeadLineBytes are truncated; the remainder is skipped.
func (a *LocalCorpusFSAdapter) ReadHead(path m.Path, maxLines int) ([]string, error) {
	// #nosec G304 - path comes from a directory listing under the corpus root
	f, err := os.Open(string(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	reader := bufio.NewReaderSize(f, maxHeadLineBytes)
	lines := make([]string, 0, maxLines)

	for len(lines) < maxLines {
		line, err := readHeadLine(reader)
		if errors.Is(err, io.EOF) {
			if line != "" {
				lines = append(lines, line)
			}

			return lines, nil
		}

		if err != nil {
			return lines, err
		}

		lines = append(lines, line)
	}

	return lines, nil
}

const maxHeadLineBytes = 4096

func readHeadLine(reader *bufio.Reader) (string, error) {
	chunk, err := reader.ReadSlice('\n')
	line := string(chunk)

	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = reader.ReadSlice('\n')
	}

	return strings.TrimRight(line, "\r\n"), err
}

// JoinPath joins path elements into a single path.
func (a *LocalCorpusFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// JoinRel resolves rel, a slash separated corpus path, against root.
func (a *LocalCorpusFSAdapter) JoinRel(root m.Path, rel string) m.Path {
	if rel == "" || rel == m.RootDirectory {
		return root
	}

	return m.Path(filepath.Join(string(root), filepath.FromSlash(rel)))
}
