package mkfs

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

type File string

var _ Artefact = File("")

func (f File) Path() string { return string(f) }

func (f File) Name(in *gomkore.Project) string {
	n, err := in.RelPath(f.Path())
	if err != nil {
		return filepath.Clean(f.Path())
	}
	return n
}

func (f File) StateAt(in *gomkore.Project) time.Time {
	ap, err := in.AbsPath(f.Path())
	if err != nil {
		return time.Time{}
	}
	st, err := os.Stat(ap)
	if err != nil || st.IsDir() {
		return time.Time{}
	}
	return st.ModTime()
}

func (f File) Exists(in *gomkore.Project) (bool, error) { return Exists(f, in) }

func (f File) Remove(in *gomkore.Project) error {
	ap, err := in.AbsPath(f.Path())
	if err != nil {
		return err
	}
	err = os.Remove(ap)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Join returns the file with path elems appended to the path of directory d.
func Join(d Directory, elem ...string) File {
	return File(filepath.Join(append([]string{d.Path()}, elem...)...))
}

func (f File) Ext() string { return filepath.Ext(f.Path()) }

func (f File) WithExt(ext string) File {
	path := f.Path()
	if ext == "" {
		ext = filepath.Ext(path)
		if ext == "" {
			return f
		}
		return File(path[:len(path)-len(ext)])
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	fExt := filepath.Ext(path)
	if fExt == "" {
		return File(path + ext)
	}
	return File(path[:len(path)-len(fExt)] + ext)
}
