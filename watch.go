package gomk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.fractalqb.de/fractalqb/jsdocmk/mkfs"
)

// Watcher calls Rebuild when files below Dirs change. Changes below one of
// the Ignore directories, e.g. the output of the build, and changes of hidden
// or editor backup files are ignored. Rebuilds are run one after the other
// and only after no change happened for Debounce.
type Watcher struct {
	Dirs     []string
	Ignore   []string
	Debounce time.Duration
	Rebuild  func(context.Context) error
	// Refresh, if set, is called after each rebuild and returns the current
	// Dirs and Ignore, e.g. from [WatchDirs] of a redeclared project. New
	// dirs are watched from then on.
	Refresh func() (dirs, ignore []string, err error)
	Trace   *Trace
}

const DefaultDebounce = 300 * time.Millisecond

// WatchDirs returns the absolute directories of all source goals in prj, i.e.
// goals that are not the result of any action, and the directories of all
// result goals. The latter are meant to be ignored.
func WatchDirs(prj *Project) (srcs, outs []string, err error) {
	add := func(ls []string, g *Goal) ([]string, error) {
		atf, ok := g.Artefact.(mkfs.Artefact)
		if !ok {
			return ls, nil
		}
		p := atf.Path()
		if _, isDir := atf.(mkfs.Directory); !isDir {
			p = filepath.Dir(p)
		}
		if p, err = prj.AbsPath(p); err != nil {
			return ls, err
		}
		if !slices.Contains(ls, p) {
			ls = append(ls, p)
		}
		return ls, nil
	}
	for _, g := range prj.Goals(nil) {
		if len(g.ResultOf()) == 0 {
			srcs, err = add(srcs, g)
		} else {
			outs, err = add(outs, g)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	slices.Sort(srcs)
	slices.Sort(outs)
	return srcs, outs, nil
}

// Run watches until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Rebuild == nil {
		return fmt.Errorf("watcher without rebuild")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fsw.Close()
	for _, d := range w.Dirs {
		if err := w.addDirs(fsw, d); err != nil {
			return err
		}
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					_ = w.addDirs(fsw, ev.Name)
				}
			}
			w.debug("change `op` of `path`", `op`, ev.Op.String(), `path`, ev.Name)
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.warn("watcher `error`", `error`, err)
		case <-timer.C:
			w.debug("rebuild after change")
			if err := w.Rebuild(ctx); err != nil {
				w.warn("rebuild failed with `error`", `error`, err)
			}
			w.refresh(fsw)
		}
	}
}

func (w *Watcher) refresh(fsw *fsnotify.Watcher) {
	if w.Refresh == nil {
		return
	}
	dirs, ignore, err := w.Refresh()
	if err != nil {
		w.warn("refresh watched dirs: `error`", `error`, err)
		return
	}
	w.Ignore = ignore
	for _, d := range dirs {
		if slices.Contains(w.Dirs, d) {
			continue
		}
		w.debug("watch new `dir`", `dir`, d)
		if err := w.addDirs(fsw, d); err != nil {
			w.warn("watch `dir` failed: `error`", `dir`, d, `error`, err)
		}
	}
	w.Dirs = dirs
}

func (w *Watcher) addDirs(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.warn("watch `dir` failed: `error`", `dir`, path, `error`, err)
		}
		return nil
	})
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	return !ignoreFile(ev.Name) && !w.ignored(ev.Name)
}

func (w *Watcher) ignored(path string) bool {
	for _, ign := range w.Ignore {
		if path == ign || strings.HasPrefix(path, ign+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func ignoreFile(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}

func (w *Watcher) debug(msg string, args ...any) {
	if w.Trace != nil {
		w.Trace.Debug(msg, args...)
	}
}

func (w *Watcher) warn(msg string, args ...any) {
	if w.Trace != nil {
		w.Trace.Warn(msg, args...)
	}
}
