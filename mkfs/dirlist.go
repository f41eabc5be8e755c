package mkfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// DirList is the list of the direct entries of directory Dir that pass
// Filter. Unlike [DirTree] subdirectories are not descended.
type DirList struct {
	Dir    string
	Filter Filter
}

var _ Directory = DirList{}

func (d DirList) Path() string { return d.Dir }

func (d DirList) List(in *gomkore.Project) (ls []string, err error) {
	prjDir, err := in.AbsPath(d.Path())
	if err != nil {
		return nil, err
	}
	err = d.ls(prjDir, func(_ string, e fs.DirEntry) error {
		ls = append(ls, filepath.Join(d.Dir, e.Name()))
		return nil
	})
	return ls, err
}

func (d DirList) Name(prj *gomkore.Project) string {
	n, err := prj.RelPath(d.Dir)
	if err != nil {
		return filepath.Clean(d.Dir)
	}
	return n
}

func (d DirList) StateAt(in *gomkore.Project) (t time.Time) {
	prjDir, err := in.AbsPath(d.Path())
	if err != nil {
		return time.Time{}
	}
	err = d.ls(prjDir, func(_ string, e fs.DirEntry) error {
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

func (d DirList) Exists(in *gomkore.Project) (bool, error) {
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

// Remove removes the listed entries and the directory itself if it became
// empty. Listed subdirectories must be empty to be removed.
func (d DirList) Remove(in *gomkore.Project) error {
	prjDir, err := in.AbsPath(d.Path())
	if err != nil {
		return err
	}
	err = d.ls(prjDir, func(_ string, e fs.DirEntry) error {
		p := filepath.Join(prjDir, e.Name())
		return os.Remove(p)
	})
	if err != nil {
		return err
	}
	return rmDirIfEmpty(prjDir)
}

func (d DirList) ls(prjDir string, do func(p string, e fs.DirEntry) error) error {
	rdir, err := os.ReadDir(prjDir)
	if err != nil {
		return err
	}
	for _, entry := range rdir {
		if d.Filter != nil {
			if ok, err := d.Filter.Ok(entry.Name(), entry); err != nil {
				return err
			} else if !ok {
				continue
			}
		}
		if err := do(entry.Name(), entry); err != nil {
			return err
		}
	}
	return nil
}
