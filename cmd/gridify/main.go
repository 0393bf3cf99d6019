// Command gridify converts images into symbol grids and reformats grids
// between their raw, pretty and escaped text forms.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	colorable "github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// exitError carries a process exit code for failures that were already
// reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// env bundles the streams a command reads and writes.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name  string
	usage string
	run   func(cfg *config, e env, args []string) error
}

var commands = []command{
	{"parse", "convert an image into a grid", runParse},
	{"batch", "convert <name>-<W>x<H>.png files into an export file", runBatch},
	{"decode", "decode escaped JSON into every grid view", runDecode},
	{"edit", "edit a grid cell by cell", runEdit},
	{"preview", "render a grid as PNG or colored text", runPreview},
	{"version", "print the version", runVersion},
}

func main() {
	e := env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(run(os.Args[1:], e))
}

func run(args []string, e env) int {
	global := flag.NewFlagSet("gridify", flag.ContinueOnError)
	global.SetOutput(e.stderr)
	configFile := global.String("config", "",
		"Path to a JSON config file (default: ./"+defaultConfigFile+" if present)")
	verbose := global.Bool("v", false, "Enable debug logging")
	global.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: gridify [flags] <command> [command flags]\n\nCommands:\n")
		for _, c := range commands {
			fmt.Fprintf(e.stderr, "  %-8s %s\n", c.name, c.usage)
		}
		fmt.Fprintf(e.stderr, "\nFlags:\n")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}

	setupLogging(e.stderr, *verbose)

	if global.NArg() == 0 {
		global.Usage()
		return 2
	}
	name := global.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(e.stderr, "Unknown command %q\n", name)
		global.Usage()
		return 2
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Errorf("Can't load config file: %v", err)
		return 1
	}

	if err := cmd.run(cfg, e, global.Args()[1:]); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Errorf("%s: %v", name, err)
		return 1
	}
	return 0
}

// setupLogging sends logs to w, through go-colorable when w is the
// process's stderr so colors survive on Windows consoles.
func setupLogging(w io.Writer, verbose bool) {
	out := w
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		out = colorable.NewColorableStderr()
	}
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}
