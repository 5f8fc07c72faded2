// Command nrm is the interactive evaluator REPL: a line reader that
// parses, compiles, and schedules each input expression against the
// dictionary and worker pool, with colon-prefixed commands for
// definitions, file loading, and type queries.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"nrm/internal/compiler"
	"nrm/internal/dict"
	"nrm/internal/errors"
	"nrm/internal/grammar"
	"nrm/internal/heap"
	"nrm/internal/infer"
	"nrm/internal/pool"
	"nrm/internal/term"
)

const historyFile = "history.txt"
const autoloadFile = "test.nrm"

var (
	d          *dict.Dict
	p          *pool.Pool
	h          *os.File
	debugTrace bool
)

func main() {
	debug := flag.Bool("debug", false, "print worker-pool and GC trace lines to stderr")
	flag.Parse()

	pool.SetDebug(*debug)
	debugTrace = *debug
	term.SetAllocator(heap.Alloc)

	d = dict.New()
	p = pool.New(d)
	p.Start()

	if _, statErr := os.Stat(historyFile); statErr != nil {
		fmt.Println("No previous history.")
	}
	var err error
	h, err = os.OpenFile(historyFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		defer h.Close()
	}

	if _, statErr := os.Stat(autoloadFile); statErr == nil {
		commandLine(":load " + autoloadFile)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Println("Error:", err)
			} else {
				fmt.Println("CTRL-D")
			}
			os.Exit(0)
		}
		line := scanner.Text()
		if h != nil {
			fmt.Fprintln(h, line)
		}
		commandLine(line)
	}
}

// commandLine parses and executes one REPL input line, or one
// semicolon-separated chunk of a loaded file.
func commandLine(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	reporter := errors.NewReporter("<repl>", input)
	cmd, derr := grammar.ParseCommand("<repl>", input)
	if derr != nil {
		fmt.Print(reporter.Format(*derr))
		return
	}

	switch {
	case cmd.Quit:
		os.Exit(1)
	case cmd.Dict:
		fmt.Print(d.Show())
	case cmd.Define != nil:
		if derr := d.Define(cmd.Define.Symbol, cmd.Define.Text); derr != nil {
			fmt.Print(reporter.Format(*derr))
		}
	case cmd.Update != nil:
		if derr := d.Update(cmd.Update.Symbol, cmd.Update.Text); derr != nil {
			fmt.Print(reporter.Format(*derr))
		}
	case cmd.Delete != nil:
		if !d.Delete(cmd.Delete.Symbol) {
			fmt.Println("no such symbol")
		}
	case cmd.Load != nil:
		runLoad(cmd.Load.Path)
	case cmd.Type != nil:
		sc, ierr := infer.InferType(cmd.Type)
		if ierr != nil {
			color.Red("TypeError: %s", ierr)
			return
		}
		fmt.Println(sc.String())
	case cmd.Repl != nil:
		runRepl(cmd.Repl, reporter)
	}
}

func runLoad(path string) {
	text, err := os.ReadFile(path)
	if err != nil {
		color.Red("can't read %s: %s", path, err)
		return
	}
	for _, chunk := range strings.Split(string(text), ";;") {
		commandLine(chunk)
	}
	fmt.Printf("load:%s finished.\n", path)
}

// runRepl compiles and evaluates a parsed expression. The parsed/
// compiled/optimized trace lines are kept but demoted behind -debug,
// since they are purely a development aid and not information a normal
// session needs on every line.
func runRepl(t term.Ref, reporter *errors.Reporter) {
	if debugTrace {
		fmt.Fprintln(os.Stderr, "[nrm] parsed:", t)
	}
	compiled := compiler.CompileSKI(t)
	if debugTrace {
		fmt.Fprintln(os.Stderr, "[nrm] compiled:", compiled)
	}
	optimized := compiler.Optimize(compiled)
	if debugTrace {
		fmt.Fprintln(os.Stderr, "[nrm] optimized:", optimized)
	}

	res, err := p.Run(optimized)
	if err != nil {
		fmt.Print(reporter.Format(err.Diagnostic))
		return
	}
	fmt.Println(res.String())
}
