package mkfs

import (
	"fmt"
	"hash"
	"io/fs"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// MkDirs creates the directories required for the results of an action. For
// [File] results this is the parent directory, for [Directory] results the
// directory itself. A zero MkDirMode disables MkDirs.
type MkDirs struct {
	MkDirMode fs.FileMode
}

var _ gomkore.Operation = (*MkDirs)(nil)

func (md *MkDirs) Describe(*gomkore.Action, *gomkore.Env) string {
	return fmt.Sprintf("MkDirs %s", md.MkDirMode)
}

func (md *MkDirs) Do(tr *gomkore.Trace, a *gomkore.Action, env *gomkore.Env) error {
	if md.MkDirMode == 0 {
		tr.Debug("MkDirs disabled")
		return nil
	}
	prj := a.Project()
	for _, res := range a.Results() {
		var dir string
		switch res := res.Artefact.(type) {
		case gomkore.Abstract:
			continue
		case Directory:
			dir = res.Path()
		case Artefact:
			dir = filepath.Dir(res.Path())
		default:
			return fmt.Errorf("illegal MkDirs result: %T", res)
		}
		path, err := prj.AbsPath(dir)
		if err != nil {
			return err
		}
		tr.Debug("create `directory`", `directory`, path)
		if err := os.MkdirAll(path, md.MkDirMode); err != nil {
			return err
		}
	}
	return nil
}

func (md *MkDirs) WriteHash(h hash.Hash, a *gomkore.Action, env *gomkore.Env) (bool, error) {
	fmt.Fprintln(h, md.MkDirMode)
	return true, nil
}
