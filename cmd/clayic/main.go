// Command clayic drives the semantic core (internal/compiler) against the
// small set of synthetic, in-memory programs internal/compiler/samples.go
// registers — there is no lexer/parser in scope (spec §1), so "source" here
// is a named sample rather than a file. Mirrors the teacher's
// cmd/ailang/main.go in structure (colored banners, a version command) but
// swaps its hand-rolled flag.Parse for github.com/spf13/cobra, the way
// CWBudde-go-dws's CLI is built in the example pack.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/compiler"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/replcore"
)

// Version info, set by ldflags during release builds (teacher convention,
// cmd/ailang/main.go).
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var (
	traceFlag          bool
	targetFlag         string
	finalOverloadsFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "clayic",
		Short: "Semantic core driver for the pattern/overload/compile-time-evaluation engine",
	}
	root.PersistentFlags().BoolVar(&traceFlag, "trace", false, "print the sample's resolution trace before the result")
	root.PersistentFlags().StringVar(&targetFlag, "target", "", "path to a YAML file overriding the default data-layout target (pointer size, default integer/float width)")
	root.PersistentFlags().BoolVar(&finalOverloadsFlag, "final-overloads", false, "enable final-overloads ambiguity checking (spec default: off, first tempness-compatible match wins)")

	root.AddCommand(listCmd(), resolveCmd(), analyzeCmd(), evalCmd(), versionCmd(), replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

// loadTarget returns compiler.DefaultTarget() unless --target names a YAML
// file, in which case it unmarshals and returns that instead (spec §6's
// backend-supplied layout facts, read here the way a build driver would
// load a target manifest rather than hard-coding one host).
func loadTarget() (compiler.Target, error) {
	target := compiler.DefaultTarget()
	if targetFlag == "" {
		return target, nil
	}
	data, err := os.ReadFile(targetFlag)
	if err != nil {
		return target, fmt.Errorf("reading target file: %w", err)
	}
	if err := yaml.Unmarshal(data, &target); err != nil {
		return target, fmt.Errorf("parsing target file: %w", err)
	}
	return target, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the built-in sample programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range compiler.Samples {
				fmt.Printf("%s  %s\n", bold(s.Name), s.Description)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s %s (%s)\n", bold("clayic"), Version, Commit)
			return nil
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive resolve/analyze shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return replcore.Run()
		},
	}
}

// buildSample constructs the named sample's CompilerState and resolves its
// argument-type tuple from typeNames, which must each name one of the
// sample's own globals (e.g. "I32", "F64").
func buildSample(sampleName string, typeNames []string) (*compiler.CompilerState, compiler.Sample, []*object.Type, error) {
	sample, ok := compiler.FindSample(sampleName)
	if !ok {
		names := make([]string, len(compiler.Samples))
		for i, s := range compiler.Samples {
			names[i] = s.Name
		}
		return nil, compiler.Sample{}, nil, fmt.Errorf("unknown sample %q (available: %s)", sampleName, strings.Join(names, ", "))
	}
	target, err := loadTarget()
	if err != nil {
		return nil, sample, nil, err
	}
	cs := compiler.New(sampleName, target, nil)
	cs.Resolver.FinalOverloadsEnabled = finalOverloadsFlag
	sample.Build(cs)

	argTypes := make([]*object.Type, len(typeNames))
	for i, n := range typeNames {
		obj, err := cs.Module.LookupPrivate(n)
		if err != nil {
			return nil, sample, nil, err
		}
		if obj == nil {
			return nil, sample, nil, fmt.Errorf("%s has no global named %s", sampleName, n)
		}
		t, ok := obj.(*object.Type)
		if !ok {
			return nil, sample, nil, fmt.Errorf("%s is not a type in sample %s", n, sampleName)
		}
		argTypes[i] = t
	}
	return cs, sample, argTypes, nil
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <sample> <types...>",
		Short: "resolve a callable against an argument-type tuple and report the matched overload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, sample, argTypes, err := buildSample(args[0], args[1:])
			if err != nil {
				return err
			}
			if traceFlag {
				fmt.Println(cyan(fmt.Sprintf("resolving %s(%v)", sample.Callable, argTypes)))
			}
			result, err := cs.Analyze(sample.Callable, argTypes, nil)
			if err != nil {
				return reportFailure(sample.Callable, err)
			}
			fmt.Println(green("matched"), "-", describeMultiPValue(result))
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <sample> <types...>",
		Short: "analyze a callable, printing its return-type vector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, sample, argTypes, err := buildSample(args[0], args[1:])
			if err != nil {
				return err
			}
			result, err := cs.Analyze(sample.Callable, argTypes, nil)
			if err != nil {
				return reportFailure(sample.Callable, err)
			}
			fmt.Println(describeMultiPValue(result))
			return nil
		},
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <sample> <int-args...>",
		Short: "resolve and run a callable to a concrete value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, ok := compiler.FindSample(args[0])
			if !ok {
				return fmt.Errorf("unknown sample %q", args[0])
			}
			target, err := loadTarget()
			if err != nil {
				return err
			}
			cs := compiler.New(args[0], target, nil)
			cs.Resolver.FinalOverloadsEnabled = finalOverloadsFlag
			sample.Build(cs)

			if len(args)-1 != len(sample.ArgTypeNames) {
				return fmt.Errorf("%s expects %d argument(s)", sample.Callable, len(sample.ArgTypeNames))
			}
			evArgs := make([]*object.EValue, len(sample.ArgTypeNames))
			for i, typeName := range sample.ArgTypeNames {
				obj, err := cs.Module.LookupPrivate(typeName)
				if err != nil {
					return err
				}
				t, ok := obj.(*object.Type)
				if !ok {
					return fmt.Errorf("%s is not a type in sample %s", typeName, args[0])
				}
				v, err := strconv.ParseInt(args[i+1], 10, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				ev, err := cs.NewIntValue(t, v)
				if err != nil {
					return err
				}
				evArgs[i] = ev
			}

			result, err := cs.Eval(sample.Callable, evArgs)
			if err != nil {
				return reportFailure(sample.Callable, err)
			}
			fmt.Println(green("result"), "-", describeMultiEValue(result))
			return nil
		},
	}
}

func reportFailure(callable string, err error) error {
	fmt.Fprintln(os.Stderr, red(fmt.Sprintf("failed to resolve %s:", callable)))
	if cerr, ok := err.(*clayerrors.CompileError); ok {
		fmt.Fprintln(os.Stderr, yellow(cerr.Error()))
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return err
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
	return strings.Join(parts, ", ")
}
