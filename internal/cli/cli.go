package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gridbuild/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// DefaultBuildFile is used when no -file flag is given.
const DefaultBuildFile = "build.hcl"

// Options is the result of parsing the command line.
type Options struct {
	Config *app.Config
	// List prints the tasks instead of running targets.
	List bool
}

// varFlag collects repeated -var NAME=VALUE flags.
type varFlag map[string]string

func (v varFlag) String() string {
	pairs := make([]string, 0, len(v))
	for name, value := range v {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (v varFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected NAME=VALUE, got %q", s)
	}
	v[name] = value
	return nil
}

// Parse processes command-line arguments. It returns the parsed Options, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridbuild - A concurrent task graph runner for static site builds.

Usage:
  gridbuild [options] [TARGET...]

Arguments:
  TARGET
    Task to run. Several targets run one after another; none runs the
    build file's default task.

Options:
`)
		flagSet.PrintDefaults()
	}

	vars := varFlag{}
	fileFlag := flagSet.String("file", DefaultBuildFile, "Path to the build file or a directory of .hcl files.")
	fFlag := flagSet.String("f", "", "Path to the build file or directory (shorthand).")
	flagSet.Var(vars, "var", "Override a build variable as NAME=VALUE. May be repeated.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for the executor.")
	listFlag := flagSet.Bool("list", false, "Print the tasks of the build file and exit.")
	strictFlag := flagSet.Bool("strict", false, "Fail when unordered tasks read and write the same paths.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *fileFlag
	if *fFlag != "" {
		path = *fFlag
	}
	slog.Debug("Build path determined.", "path", path)

	cfg, err := app.NewConfig(app.Config{
		BuildPath:   path,
		Targets:     flagSet.Args(),
		Variables:   vars,
		LogFormat:   strings.ToLower(*logFormatFlag),
		LogLevel:    strings.ToLower(*logLevelFlag),
		WorkerCount: *workersFlag,
		Strict:      *strictFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return &Options{Config: cfg, List: *listFlag}, false, nil
}
