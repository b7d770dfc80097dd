package domain

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"
	"sort"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

// CorpusWalker enumerates a corpus root into a CorpusGroup tree.
type CorpusWalker interface {
	// Walk visits root recursively. Only a missing or non-directory root and
	// context cancellation are errors; unreadable entries are recorded in the
	// tree instead.
	Walk(ctx context.Context, root m.Path, rule m.MatchRule, filter TargetFilter) (m.CorpusGroup, error)

	// WalkLevel lists the direct children of dir, a path relative to root.
	// Nested directories are returned as groups without contents.
	WalkLevel(ctx context.Context, root m.Path, dir string, rule m.MatchRule, filter TargetFilter) (m.CorpusGroup, error)
}

type corpusWalker struct {
	fsAdapter adapter.CorpusFSAdapter
	skipDirs  []string
}

// NewCorpusWalker constructs a CorpusWalker. Directories named in skipDirs,
// such as ".git", are neither descended nor reported.
func NewCorpusWalker(fsAdapter adapter.CorpusFSAdapter, skipDirs ...string) CorpusWalker {
	return &corpusWalker{
		fsAdapter: fsAdapter,
		skipDirs:  skipDirs,
	}
}

func (w *corpusWalker) Walk(ctx context.Context, root m.Path, rule m.MatchRule, filter TargetFilter) (m.CorpusGroup, error) {
	if err := w.checkDirectory(root); err != nil {
		return m.CorpusGroup{}, err
	}

	slog.Debug("walking corpus", "root", root, "include", rule.Include().String(), "target", filter.Target())

	return w.walkDir(ctx, root, m.RootDirectory, rule, filter, true)
}

func (w *corpusWalker) WalkLevel(ctx context.Context, root m.Path, dir string, rule m.MatchRule, filter TargetFilter) (m.CorpusGroup, error) {
	if err := w.checkDirectory(w.fsAdapter.JoinRel(root, dir)); err != nil {
		return m.CorpusGroup{}, err
	}

	return w.walkDir(ctx, root, dir, rule, filter, false)
}

func (w *corpusWalker) checkDirectory(path m.Path) error {
	info, err := w.fsAdapter.Stat(path)
	if err != nil {
		return &m.ConfigurationError{Subject: "root", Value: string(path), Err: err}
	}

	if !info.IsDir() {
		return &m.ConfigurationError{Subject: "root", Value: string(path), Err: m.ErrRootNotDirectory}
	}

	return nil
}

func (w *corpusWalker) walkDir(
	ctx context.Context,
	root m.Path,
	rel string,
	rule m.MatchRule,
	filter TargetFilter,
	deep bool,
) (m.CorpusGroup, error) {
	if err := ctx.Err(); err != nil {
		return m.CorpusGroup{}, err
	}

	group := m.CorpusGroup{DirectoryPath: rel}

	entries, err := w.fsAdapter.ReadDir(w.fsAdapter.JoinRel(root, rel))
	if err != nil {
		slog.Warn("failed to list directory", "path", rel, "error", err)

		group.Entries = append(group.Entries, failedEntry(rel, true, err))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		childRel := m.JoinRel(rel, entry.Name())
		mode := entry.Type()

		switch {
		case mode&fs.ModeSymlink != 0:
			slog.Debug("skipping symlink", "path", childRel)

		case entry.IsDir():
			if slices.Contains(w.skipDirs, entry.Name()) {
				continue
			}

			if !rule.Recursive() {
				if err := w.classify(ctx, &group, root, childRel, true, rule, filter); err != nil {
					return m.CorpusGroup{}, err
				}

				continue
			}

			if !deep {
				group.Groups = append(group.Groups, m.CorpusGroup{DirectoryPath: childRel})
				continue
			}

			sub, err := w.walkDir(ctx, root, childRel, rule, filter, true)
			if err != nil {
				return m.CorpusGroup{}, err
			}

			group.Groups = append(group.Groups, sub)

		case mode.IsRegular():
			if err := w.classify(ctx, &group, root, childRel, false, rule, filter); err != nil {
				return m.CorpusGroup{}, err
			}

		default:
			slog.Debug("skipping non-regular file", "path", childRel, "mode", mode.String())
		}
	}

	return group, nil
}

// classify applies the matcher and the target filter to one child. Only a
// cancelled context is returned as an error.
func (w *corpusWalker) classify(
	ctx context.Context,
	group *m.CorpusGroup,
	root m.Path,
	rel string,
	isDir bool,
	rule m.MatchRule,
	filter TargetFilter,
) error {
	switch Classify(rel, isDir, rule) {
	case Irrelevant:
		return nil
	case Excluded:
		group.Excluded = append(group.Excluded, m.ChildName(rel, isDir))
		return nil
	case Eligible:
	}

	entry := m.CorpusEntry{RelativePath: rel, IsDirectory: isDir}

	ok, err := filter.Eligible(ctx, entry, w.fsAdapter.JoinRel(root, rel))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		slog.Warn("failed to classify entry", "path", rel, "error", err)
		group.Entries = append(group.Entries, failedEntry(rel, isDir, err))

		return nil
	}

	if !ok {
		group.Excluded = append(group.Excluded, m.ChildName(rel, isDir))
		return nil
	}

	group.Entries = append(group.Entries, entry)

	return nil
}

func failedEntry(rel string, isDir bool, err error) m.CorpusEntry {
	var ue *m.UnreadableEntryError
	if !errors.As(err, &ue) {
		ue = &m.UnreadableEntryError{Path: rel, Err: err}
	}

	return m.CorpusEntry{
		RelativePath: rel,
		IsDirectory:  isDir,
		Problem:      ue.Err.Error(),
		Err:          ue,
	}
}
