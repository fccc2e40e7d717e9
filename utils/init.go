package utils

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

// options holds the command-line configuration for a driver binary that
// wires the core analyses together. The core package itself never reads
// these flags directly -- callers translate them into analysis
// configuration (e.g. ptanalysis.Options, reaching.Run's maxSetSize
// argument) before invoking a
// run. Keeping the flag surface here (rather than scattered across the
// analysis packages) mirrors how the rest of the dependency tree is wired.
type options struct {
	maxOffset    uint
	maxSetSize   uint
	task         string
	inputPath    string
	noColorize   bool
	verbose      bool
	visualize    bool
	outputFormat string
	debugChecks  bool
	minlen       uint
	nodesep      float64
}

const (
	_POINTS_TO = iota
	_REACHING_DEFS
	_CFG_TO_DOT
	_VALIDATE
)

var task = []struct{ flag, explanation string }{{
	"points-to",
	"Run the flow-sensitive points-to fixpoint and print the points-to set of every node",
}, {
	"reaching-defs",
	"Run the points-to analysis followed by reaching-definitions and print the result",
}, {
	"cfg-to-dot",
	"Render the basic-block control-flow graph (with control-dependence edges) as a dot graph",
}, {
	"validate",
	"Run only the pointer-graph structural validator",
}}

var opts = &options{}

type optInterface struct{}
type taskInterface struct{}

func Opts() optInterface { return optInterface{} }

func (optInterface) NoColorize() bool     { return opts.noColorize }
func (optInterface) Verbose() bool        { return opts.verbose }
func (optInterface) Visualize() bool      { return opts.visualize }
func (optInterface) OutputFormat() string { return opts.outputFormat }
func (optInterface) DebugChecks() bool    { return opts.debugChecks }
func (optInterface) MaxOffset() int       { return int(opts.maxOffset) }
func (optInterface) MaxSetSize() int      { return int(opts.maxSetSize) }
func (optInterface) Minlen() uint         { return opts.minlen }
func (optInterface) Nodesep() float64     { return opts.nodesep }
func (optInterface) InputPath() string    { return opts.inputPath }

func (optInterface) Task() taskInterface   { return taskInterface{} }
func (taskInterface) IsPointsTo() bool     { return opts.task == task[_POINTS_TO].flag }
func (taskInterface) IsReachingDefs() bool { return opts.task == task[_REACHING_DEFS].flag }
func (taskInterface) IsCfgToDot() bool     { return opts.task == task[_CFG_TO_DOT].flag }
func (taskInterface) IsValidate() bool     { return opts.task == task[_VALIDATE].flag }

func (optInterface) OnVerbose(do func()) {
	if Opts().Verbose() {
		do()
	}
}

// CanColorize wraps a color.SprintFunc-shaped function so that it becomes
// the identity function whenever colorized output has been disabled.
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

func init() {
	taskFlag := "\n"
	for _, t := range task {
		taskFlag += t.flag + " -- " + t.explanation + "\n"
	}
	taskFlag += "\n"

	flag.UintVar(&opts.maxOffset, "max-offset", 64,
		"ceiling on the number of distinct concrete offsets tracked per memory object before collapsing to UNKNOWN")
	flag.UintVar(&opts.maxSetSize, "max-set-size", 256,
		"ceiling on the size of a reaching-definitions node set before collapsing to UNKNOWN")
	flag.StringVar(&opts.task, "task", task[_POINTS_TO].flag, "Set the task to perform. Options:"+taskFlag)
	flag.StringVar(&opts.inputPath, "input", "", "path to a JSON graph description to load (required; see pgraphio.Load)")
	flag.BoolVar(&opts.noColorize, "no-colorize", false, "disable pretty printer colorization")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable verbose output")
	flag.BoolVar(&opts.visualize, "visualize", false, "render graphs to an image via graphviz instead of printing dot text")
	flag.StringVar(&opts.outputFormat, "format", "svg", "output file format when -visualize is set [svg | png | jpg | ...]")
	flag.BoolVar(&opts.debugChecks, "debug-checks", false, "enable expensive invariant checks (e.g. interval map disjointness) after every mutation")
	flag.UintVar(&opts.minlen, "minlen", 1, "minimum edge length to use when rendering graphs with -visualize")
	flag.Float64Var(&opts.nodesep, "nodesep", 0.25, "minimum node separation to use when rendering graphs with -visualize")

	log.SetFlags(log.Ltime | log.Lshortfile)
}

func ParseArgs() {
	// Calling flag.Parse in init messes up unit tests.
	flag.Parse()

	validTask := false
	for _, t := range task {
		if t.flag == opts.task {
			validTask = true
			break
		}
	}
	if !validTask {
		log.Fatalf("Value \"%s\" is not valid for -task", opts.task)
	}
	if opts.inputPath == "" {
		log.Fatalln("-input is required: path to a JSON graph description")
	}
}
