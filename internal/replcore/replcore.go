// Package replcore implements an interactive shell over the semantic core
// (internal/compiler), the in-process counterpart to cmd/clayic's one-shot
// subcommands. There is no parser in scope (spec §1), so the shell drives
// internal/compiler.Samples by name rather than reading Clay source, the
// same limitation cmd/clayic works under. Grounded on the teacher's
// internal/repl package: a liner-backed prompt loop with `:`-prefixed meta
// commands and colored output, trimmed to this core's three operations
// (resolve/analyze/eval, plus a :trace toggle) instead of a full language
// REPL.
package replcore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/clayic/clayic/internal/compiler"
	"github.com/clayic/clayic/internal/object"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Shell holds the session state a sequence of `:resolve`/`:analyze`/`:eval`
// commands accumulates: which sample is currently loaded and whether trace
// output is on.
type Shell struct {
	cs      *compiler.CompilerState
	sample  compiler.Sample
	loaded  bool
	trace   bool
	history []string
}

// Run starts an interactive session on stdin/stdout, the entry point
// cmd/clayic's `repl` subcommand calls.
func Run() error {
	s := &Shell{}
	return s.start(os.Stdin, os.Stdout)
}

func (s *Shell) start(in io.Reader, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".clayic_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(l string) (c []string) {
		if strings.HasPrefix(l, ":") {
			for _, cmd := range []string{":load", ":resolve", ":analyze", ":eval", ":trace", ":final-overloads", ":list", ":help", ":quit"} {
				if strings.HasPrefix(cmd, l) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	fmt.Fprintf(out, "%s\n", bold("clayic repl"))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))

	for {
		input, err := line.Prompt(s.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		s.history = append(s.history, input)

		if input == ":quit" || input == ":q" {
			break
		}
		s.dispatch(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func (s *Shell) prompt() string {
	if s.loaded {
		return fmt.Sprintf("clay[%s]> ", s.sample.Name)
	}
	return "clay> "
}

func (s *Shell) dispatch(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":help", ":h":
		s.printHelp(out)
	case ":list", ":l":
		for _, sample := range compiler.Samples {
			fmt.Fprintf(out, "%s  %s\n", bold(sample.Name), sample.Description)
		}
	case ":trace":
		s.trace = !s.trace
		fmt.Fprintf(out, "trace: %v\n", s.trace)
	case ":final-overloads":
		if !s.requireLoaded(out) {
			return
		}
		s.cs.Resolver.FinalOverloadsEnabled = !s.cs.Resolver.FinalOverloadsEnabled
		fmt.Fprintf(out, "final-overloads: %v\n", s.cs.Resolver.FinalOverloadsEnabled)
	case ":load":
		s.load(args, out)
	case ":resolve", ":r":
		s.resolve(args, out)
	case ":analyze", ":a":
		s.analyze(args, out)
	case ":eval", ":e":
		s.eval(args, out)
	default:
		fmt.Fprintf(out, "%s unknown command %q (:help for a list)\n", red("error:"), cmd)
	}
}

func (s *Shell) printHelp(out io.Writer) {
	fmt.Fprintln(out, `commands:
  :list                    list the built-in sample programs
  :load <sample>           load a sample into the session
  :resolve <types...>      resolve the loaded sample's callable against a type tuple
  :analyze <types...>      same as :resolve but prints only the return-type vector
  :eval <int-args...>      resolve and run the loaded sample to a concrete value
  :trace                   toggle resolution tracing
  :final-overloads         toggle final-overloads ambiguity checking (default off)
  :quit                    exit`)
}

func (s *Shell) load(args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, red("error:"), "usage: :load <sample>")
		return
	}
	sample, ok := compiler.FindSample(args[0])
	if !ok {
		fmt.Fprintf(out, "%s unknown sample %q\n", red("error:"), args[0])
		return
	}
	cs := compiler.New(args[0], compiler.DefaultTarget(), nil)
	sample.Build(cs)
	s.cs, s.sample, s.loaded = cs, sample, true
	fmt.Fprintf(out, "loaded %s: %s\n", bold(sample.Name), sample.Description)
}

func (s *Shell) requireLoaded(out io.Writer) bool {
	if !s.loaded {
		fmt.Fprintln(out, red("error:"), "no sample loaded, try :list then :load <name>")
		return false
	}
	return true
}

func (s *Shell) argTypes(names []string, out io.Writer) ([]*object.Type, bool) {
	types := make([]*object.Type, len(names))
	for i, n := range names {
		obj, err := s.cs.Module.LookupPrivate(n)
		if err != nil || obj == nil {
			fmt.Fprintf(out, "%s %s has no global named %s\n", red("error:"), s.sample.Name, n)
			return nil, false
		}
		t, ok := obj.(*object.Type)
		if !ok {
			fmt.Fprintf(out, "%s %s is not a type\n", red("error:"), n)
			return nil, false
		}
		types[i] = t
	}
	return types, true
}

func (s *Shell) resolve(args []string, out io.Writer) {
	if !s.requireLoaded(out) {
		return
	}
	types, ok := s.argTypes(args, out)
	if !ok {
		return
	}
	if s.trace {
		fmt.Fprintln(out, cyan(fmt.Sprintf("resolving %s%v", s.sample.Callable, types)))
	}
	result, err := s.cs.Analyze(s.sample.Callable, types, nil)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("failed:"), err)
		return
	}
	fmt.Fprintln(out, green("matched"), "-", describeMultiPValue(result))
}

func (s *Shell) analyze(args []string, out io.Writer) {
	if !s.requireLoaded(out) {
		return
	}
	types, ok := s.argTypes(args, out)
	if !ok {
		return
	}
	result, err := s.cs.Analyze(s.sample.Callable, types, nil)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("failed:"), err)
		return
	}
	fmt.Fprintln(out, describeMultiPValue(result))
}

func (s *Shell) eval(args []string, out io.Writer) {
	if !s.requireLoaded(out) {
		return
	}
	if len(args) != len(s.sample.ArgTypeNames) {
		fmt.Fprintf(out, "%s %s expects %d argument(s)\n", red("error:"), s.sample.Callable, len(s.sample.ArgTypeNames))
		return
	}
	evArgs := make([]*object.EValue, len(args))
	for i, typeName := range s.sample.ArgTypeNames {
		obj, err := s.cs.Module.LookupPrivate(typeName)
		if err != nil || obj == nil {
			fmt.Fprintf(out, "%s %s has no global named %s\n", red("error:"), s.sample.Name, typeName)
			return
		}
		t := obj.(*object.Type)
		v, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			fmt.Fprintf(out, "%s argument %d: %v\n", red("error:"), i+1, err)
			return
		}
		ev, err := s.cs.NewIntValue(t, v)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", red("error:"), err)
			return
		}
		evArgs[i] = ev
	}
	result, err := s.cs.Eval(s.sample.Callable, evArgs)
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("failed:"), err)
		return
	}
	fmt.Fprintln(out, green("result"), "-", describeMultiEValue(result))
}

func describeMultiPValue(mpv *object.MultiPValue) string {
	var parts []string
	for _, v := range mpv.Values {
		kind := "rvalue"
		if !v.IsTemp {
			kind = "lvalue"
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", v.Type, kind))
	}
	return strings.Join(parts, ", ")
}

func describeMultiEValue(mev *object.MultiEValue) string {
	var parts []string
	for _, v := range mev.Values {
		parts = append(parts, fmt.Sprintf("%s = 0x%x", v.Type, v.Addr))
	}
	return yellow(strings.Join(parts, ", "))
}
