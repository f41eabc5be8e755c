package gomk

import (
	"fmt"
	"hash"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/jsdocmk/gomkore"
)

// CmdOp runs an external command. A relative CWD is resolved against the
// directory of the action's project.
type CmdOp struct {
	CWD             string
	Exe             string
	Args            []string
	InFile, OutFile string
	Desc            string

	// OutPrefix is written at the start of each line of the command's stdout
	// and stderr if not empty.
	OutPrefix string
}

var _ gomkore.Operation = (*CmdOp)(nil)

func (op *CmdOp) Describe(*Action, *Env) string {
	if op.Desc != "" {
		return op.Desc
	}
	return fmt.Sprintf("%s$%s%v", filepath.Base(op.Exe), op.Exe, op.Args)
}

func (op *CmdOp) Do(tr *Trace, a *Action, env *Env) error {
	xenv, err := env.ExecEnv()
	if err != nil {
		tr.Warn(err.Error(), `action`, a.String())
	}
	cmd := exec.CommandContext(tr.Ctx(), op.Exe, op.Args...)
	if cmd.Dir, err = op.dir(a); err != nil {
		return err
	}
	cmd.Env = xenv
	if op.InFile != "" {
		r, err := os.Open(op.InFile)
		if err != nil {
			return err
		}
		defer r.Close()
		cmd.Stdin = r
	} else {
		cmd.Stdin = env.In
	}
	if op.OutFile != "" {
		w, err := os.Create(op.OutFile)
		if err != nil {
			return err
		}
		defer w.Close()
		cmd.Stdout = w
	} else {
		cmd.Stdout = op.out(env.Out)
	}
	cmd.Stderr = op.out(env.Err)
	tr.Debug("exec `cmd` in `dir`", `cmd`, cmd.String(), `dir`, cmd.Dir)
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("%s in %s: %w", cmd, cmd.Dir, err)
	}
	return nil
}

func (op *CmdOp) WriteHash(h hash.Hash, a *Action, env *Env) (bool, error) {
	fmt.Fprintln(h, op.CWD)
	fmt.Fprintln(h, op.Exe)
	for _, arg := range op.Args {
		fmt.Fprintln(h, arg)
	}
	fmt.Fprintln(h, op.InFile)
	fmt.Fprintln(h, op.OutFile)
	if env != nil {
		xenv, err := env.ExecEnv()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(h, strings.Join(xenv, "\n"))
	}
	return true, nil
}

func (op *CmdOp) dir(a *Action) (string, error) {
	if a == nil || filepath.IsAbs(op.CWD) {
		return op.CWD, nil
	}
	return a.Project().AbsPath(op.CWD)
}

func (op *CmdOp) out(w io.Writer) io.Writer {
	if op.OutPrefix == "" || w == nil {
		return w
	}
	return gomkore.NewPrefixWriterString(w, op.OutPrefix)
}
