package mkfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// DirTree is a directory with all its subdirectories. If Filter is not nil,
// only the matching entries are considered to be part of the tree. Prune
// selects subdirectories that are skipped with all their content.
type DirTree struct {
	Dir    string
	Filter Filter
	Prune  Filter
}

var _ Directory = DirTree{}

// DirFiles returns the [DirTree] of all files in dir that match the glob
// pattern match up to a path length of pathMax. An empty match selects all
// files, pathMax <= 0 does not limit the path length.
func DirFiles(dir, match string, pathMax int) DirTree {
	res := DirTree{Dir: dir}
	if match == "" {
		res.Filter = IsDir(false)
	} else {
		res.Filter = All{IsDir(false), NameMatch(match)}
	}
	if pathMax > 0 {
		switch es := res.Filter.(type) {
		case All:
			res.Filter = append(es, MaxPathLen(pathMax))
		default:
			res.Filter = All{es, MaxPathLen(pathMax)}
		}
	}
	return res
}

func (d DirTree) Path() string { return d.Dir }

// List returns the paths of all entries in the tree. The paths have the
// form d.Dir/<relative path>.
func (d DirTree) List(in *gomkore.Project) (ls []string, err error) {
	root, err := in.AbsPath(d.Path())
	if err != nil {
		return nil, err
	}
	err = d.ls(root, func(p string, _ fs.DirEntry) error {
		ls = append(ls, filepath.Join(d.Dir, p))
		return nil
	})
	return ls, err
}

func (d DirTree) Name(in *gomkore.Project) string {
	n, err := in.RelPath(d.Dir)
	if err != nil {
		return filepath.Clean(d.Dir)
	}
	return n
}

// StateAt returns the latest modification time of all entries in the tree.
func (d DirTree) StateAt(in *gomkore.Project) (t time.Time) {
	root, err := in.AbsPath(d.Dir)
	if err != nil {
		return time.Time{}
	}
	err = d.ls(root, func(p string, e fs.DirEntry) error {
		if info, err := e.Info(); err != nil {
			return err
		} else if mt := info.ModTime(); mt.After(t) {
			t = mt
		}
		return nil
	})
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DirTree) Exists(in *gomkore.Project) (bool, error) {
	st, err := Stat(d, in)
	switch {
	case err == nil:
		if !st.IsDir() {
			return true, fmt.Errorf("%s is no directory", d.Path())
		}
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, err
}

// Remove removes the complete directory tree if d has no Filter. Otherwise
// only the matching files and the directories that became empty are removed.
func (d DirTree) Remove(in *gomkore.Project) error {
	root, err := in.AbsPath(d.Path())
	if err != nil {
		return err
	}
	if d.Filter == nil {
		return os.RemoveAll(root)
	}
	var dirs []string
	err = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ok, err := d.Filter.Ok(rel, e); err != nil {
			return err
		} else if ok {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.Reverse(dirs)
	for _, dir := range dirs {
		if err := rmDirIfEmpty(dir); err != nil {
			return err
		}
	}
	return nil
}

// ls calls do for each entry below root that passes the filter. The root
// itself is never passed to do.
func (d DirTree) ls(root string, do func(string, fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		path, err = filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if e.IsDir() && d.Prune != nil {
			if prune, err := d.Prune.Ok(path, e); err != nil {
				return err
			} else if prune {
				return filepath.SkipDir
			}
		}
		if ok, err := d.ok(path, e); err != nil {
			return err
		} else if ok {
			if err := do(path, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d DirTree) ok(p string, e fs.DirEntry) (ok bool, err error) {
	if d.Filter != nil {
		return d.Filter.Ok(p, e)
	}
	return true, nil
}
