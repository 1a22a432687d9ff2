package align

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type Aligner int

const (
	Minimap2 Aligner = iota
	Nucmer
)

func (a Aligner) String() string {
	switch a {
	case Minimap2:
		return "minimap2"
	case Nucmer:
		return "nucmer"
	}
	return fmt.Sprintf("Aligner(%d)", int(a))
}

// Format is the alignment format the aligner's runner leaves on disk.
func (a Aligner) Format() Format {
	if a == Nucmer {
		return FormatCoords
	}
	return FormatPAF
}

// ParseAligner accepts 'minimap2' or 'nucmer', optionally as a path to the
// executable.
func ParseAligner(path string) (Aligner, error) {
	switch filepath.Base(path) {
	case "minimap2":
		return Minimap2, nil
	case "nucmer":
		return Nucmer, nil
	}
	return 0, fmt.Errorf("must specify either 'minimap2' or 'nucmer' (PATHs allowed) as aligner, got: %q", path)
}

// Runner produces raw alignment text for a reference and a query.
type Runner interface {
	// Run returns the alignment file name. An existing file is kept
	// unless overwrite was requested.
	Run(ctx context.Context) (string, error)
}

type RunOpt struct {
	Exe       string // executable, PATHs allowed
	Params    string // space delimited, passed directly to the aligner
	RefFn     string
	QueryFn   string
	Prefix    string // output prefix, the suffix is added by the runner
	Overwrite bool
}

func NewRunner(a Aligner, opt RunOpt) Runner {
	if opt.Exe == "" {
		opt.Exe = a.String()
	}
	if a == Nucmer {
		return &NucmerRunner{opt}
	}
	return &Minimap2Runner{opt}
}

type Minimap2Runner struct {
	RunOpt
}

func (m *Minimap2Runner) Run(ctx context.Context) (string, error) {
	outfn := m.Prefix + ".paf"
	if retain(outfn, m.Overwrite) {
		return outfn, nil
	}
	args := append(strings.Fields(m.Params), m.RefFn, m.QueryFn)
	if err := execToFile(exec.CommandContext(ctx, m.Exe, args...), outfn); err != nil {
		return "", err
	}
	return outfn, nil
}

// NucmerRunner runs nucmer and converts its delta file with show-coords,
// which is looked up next to the nucmer executable.
type NucmerRunner struct {
	RunOpt
}

func (n *NucmerRunner) Run(ctx context.Context) (string, error) {
	outfn := n.Prefix + ".coords"
	if retain(outfn, n.Overwrite) {
		return outfn, nil
	}
	args := append(strings.Fields(n.Params), "-p", n.Prefix, n.RefFn, n.QueryFn)
	if err := Exec(exec.CommandContext(ctx, n.Exe, args...)); err != nil {
		return "", err
	}
	showCoords := "show-coords"
	if strings.Contains(n.Exe, "/") {
		showCoords = filepath.Dir(n.Exe) + "/" + showCoords
	}
	cmd := exec.CommandContext(ctx, showCoords, "-lTH", n.Prefix+".delta")
	if err := execToFile(cmd, outfn); err != nil {
		return "", err
	}
	return outfn, nil
}

func retain(fn string, overwrite bool) bool {
	if _, err := os.Stat(fn); err == nil && !overwrite {
		log.Printf("[retain] retaining pre-existing file: %s\n", fn)
		return true
	}
	return false
}

// Exec runs cmd and reports its stderr on failure.
func Exec(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	fullCmd := strings.Join(cmd.Args, " ")
	log.Printf("[Exec] %s\n", fullCmd)
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("error running '%s': %w\n\nstderr:\n%s", fullCmd, err, stderr.String())
		}
		return fmt.Errorf("error running '%s': %w", fullCmd, err)
	}
	return nil
}

// execToFile writes the stdout of cmd to fn through a temporary file so a
// failed run never leaves a partial alignment file behind.
func execToFile(cmd *exec.Cmd, fn string) error {
	tmp, err := os.CreateTemp(filepath.Dir(fn), "."+filepath.Base(fn)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", fn, err)
	}
	defer os.Remove(tmp.Name())
	cmd.Stdout = tmp
	if err := Exec(cmd); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	return os.Rename(tmp.Name(), fn)
}
