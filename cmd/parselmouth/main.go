// parselmouth runs scripts against the praat object bindings.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feather-lang/parselmouth"
	"github.com/feather-lang/parselmouth/interp"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	logLevel   string
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "parselmouth",
		Short:         "Script the praat object library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start an interactive session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.interp()
				if err != nil {
					return a.fail(err)
				}
				defer in.Close()
				return runREPL(in, a.stdin, a.stdout, a.stderr)
			},
		},
		&cobra.Command{
			Use:   "run FILE",
			Short: "Evaluate a script file; - reads standard input",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.interp()
				if err != nil {
					return a.fail(err)
				}
				defer in.Close()
				return a.fail(a.runFile(in, args[0]))
			},
		},
		&cobra.Command{
			Use:   "types",
			Short: "List the registered classes and enums",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.interp()
				if err != nil {
					return a.fail(err)
				}
				defer in.Close()
				printTypes(a.stdout, in)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.interp()
				if err != nil {
					return a.fail(err)
				}
				defer in.Close()
				lv, err := in.Eval("lapack_version")
				if err != nil {
					return a.fail(err)
				}
				fmt.Fprintf(a.stdout, "parselmouth %s\n", parselmouth.Version)
				fmt.Fprintf(a.stdout, "lapack %s\n", strings.ReplaceAll(lv.String(), " ", "."))
				return nil
			},
		},
	)
	return root
}

func (a *app) fail(err error) error {
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
	}
	return err
}

func (a *app) config() (parselmouth.Config, error) {
	cfg := parselmouth.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = parselmouth.LoadConfig(a.configPath); err != nil {
			return cfg, err
		}
	}
	if a.logLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(a.logLevel)); err != nil {
			return cfg, fmt.Errorf("unknown log level %q", a.logLevel)
		}
		cfg.Log.Level = a.logLevel
	}
	return cfg, nil
}

func (a *app) interp() (*interp.Interp, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return parselmouth.New(
		parselmouth.WithConfig(cfg),
		parselmouth.WithLogger(cfg.Log.Logger(a.stderr)),
		parselmouth.WithOutput(a.stdout),
	)
}

func (a *app) runFile(in *interp.Interp, path string) error {
	var (
		script []byte
		err    error
	)
	if path == "-" {
		script, err = io.ReadAll(a.stdin)
	} else {
		script, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	result, err := in.Eval(string(script))
	if err != nil {
		return err
	}
	if s := result.String(); s != "" {
		fmt.Fprintln(a.stdout, s)
	}
	return nil
}

func printTypes(w io.Writer, in *interp.Interp) {
	fmt.Fprintln(w, "classes:")
	for _, name := range in.Classes() {
		c, _ := in.Class(name)
		line := "  " + name
		if p := c.Parent(); p != nil {
			line += " -> " + p.Name()
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "enums:")
	for _, name := range in.Enums() {
		e, _ := in.Enum(name)
		fmt.Fprintf(w, "  %s {%s}\n", name, strings.Join(e.Members(), " "))
	}
}
