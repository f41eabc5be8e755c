// Package mkfs provides artefacts and operations for files and directories
// in the OS's filesystem.
package mkfs

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// Artefact is a [gomkore.RemovableArtefact] with a filesystem path. Relative
// paths are relative to the project directory.
type Artefact interface {
	gomkore.RemovableArtefact
	Path() string
}

// Directory is a filesystem artefact that contains other files.
type Directory interface {
	Artefact
	List(in *gomkore.Project) ([]string, error)

	ls(string, func(string, fs.DirEntry) error) error
}

func Stat(a Artefact, in *gomkore.Project) (fs.FileInfo, error) {
	p, err := in.AbsPath(a.Path())
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func Exists(a Artefact, in *gomkore.Project) (bool, error) {
	_, err := Stat(a, in)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func rmDirIfEmpty(path string) error {
	if ok, err := isDirEmpty(path); err != nil {
		return err
	} else if !ok {
		return nil
	}
	return os.Remove(path)
}

func isDirEmpty(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer dir.Close()
	if _, err = dir.ReadDir(1); errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
