// Package exec_cmd implements the `exec` step, which pipes every file of the
// stream through an external command.
package exec_cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/stream"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `exec` step. The command reads a file
// on stdin and writes the replacement on stdout. Ext, when set, changes the
// extension of every processed file.
type Input struct {
	Command string   `hcl:"command"`
	Ext     string   `hcl:"ext,optional"`
	Include []string `hcl:"include,optional"`
}

// Run runs the command once per selected file, in the project root.
func Run(ctx context.Context, scope *registry.Scope, input *Input) error {
	logger := ctxlog.FromContext(ctx)
	args, err := shlex.Split(input.Command)
	if err != nil {
		return fmt.Errorf("parsing command %q: %w", input.Command, err)
	}
	if len(args) == 0 {
		return errors.New("command must not be empty")
	}
	if scope.Stream.Len() == 0 {
		logger.Debug("No files to process.", "command", args[0])
		return nil
	}
	bin, err := exec.LookPath(args[0])
	if err != nil {
		return err
	}

	ext := input.Ext
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	err = scope.Stream.Each(ctx, func(ctx context.Context, f *stream.File) error {
		ok, err := fsutil.Selected(input.Include, f.Path)
		if err != nil || !ok {
			return err
		}

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, bin, args[1:]...)
		cmd.Dir = scope.Model.Root
		cmd.Stdin = bytes.NewReader(f.Contents)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return fmt.Errorf("%s: %s: %w: %s", f.Path, args[0], err, msg)
			}
			return fmt.Errorf("%s: %s: %w", f.Path, args[0], err)
		}
		logger.Debug("Command finished.", "path", f.Path, "command", args[0], "out_bytes", stdout.Len())
		f.Contents = stdout.Bytes()
		return nil
	})
	if err != nil {
		return err
	}

	if ext == "" {
		return nil
	}
	var renamed []*stream.File
	for _, f := range scope.Stream.Files() {
		ok, err := fsutil.Selected(input.Include, f.Path)
		if err != nil {
			return err
		}
		if ok {
			cp := *f
			cp.Path = strings.TrimSuffix(f.Path, f.Ext()) + ext
			renamed = append(renamed, &cp)
		} else {
			renamed = append(renamed, f)
		}
	}
	scope.Stream.Reset(renamed...)
	return nil
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep("exec", registry.Step(Run))
}
