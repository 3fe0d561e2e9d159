package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"aqua/internal/evaluator"
	aqualog "aqua/internal/log"
	"aqua/internal/object"
	"aqua/internal/repl"
	"aqua/internal/util"

	"github.com/fatih/color"
)

const (
	DefaultRootPath = "."
)

var (
	// Version, BuildDate and Commit are set at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	rootPath   string
	configPath string
	debugAST   string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.StringVar(&rootPath, "root", "", "Set the root context for the program (used for imports)")
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file (default <root>/"+util.DefaultConfigFile+")")
	// parser config
	flag.StringVar(&debugAST, "debug-ast", "", "Write the parsed AST next to each source file: json or yaml")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	os.Exit(run(flag.Args(), os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, stdout, stderr io.Writer) int {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 2
	}

	logger, closer, err := aqualog.New(config.LogLevel, config.LogFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "log error: %v\n", err)
		return 2
	}
	defer closer.Close()
	slog.SetDefault(logger)

	e := evaluator.New(
		evaluator.WithConfig(config),
		evaluator.WithOutput(stdout),
		evaluator.WithLogger(logger),
	)
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error("failed to release builtin resources", slog.Any("error", err))
		}
	}()

	if len(args) == 0 {
		fmt.Fprintf(stdout, "aqua %s\n", Version)
		repl.Start(in, stdout, e, config.Prompt)
		return 0
	}

	logger.Info("running script", slog.String("path", args[0]))
	return runFile(e, args[0], stderr)
}

func runFile(e *evaluator.Evaluator, path string, stderr io.Writer) int {
	result, err := e.EvalFile(path, object.NewEnvironment())
	if err != nil {
		var parseErrs *evaluator.ParseErrors
		if errors.As(err, &parseErrs) {
			printParseErrors(stderr, parseErrs)
		} else {
			color.New(color.FgRed).Fprintf(stderr, "%v\n", err)
		}
		return 1
	}

	if errObj, ok := result.(*object.Error); ok {
		color.New(color.FgRed).Fprintf(stderr, "runtime error: %s\n", errObj.Message)
		return 1
	}
	return 0
}

func printParseErrors(w io.Writer, pe *evaluator.ParseErrors) {
	header := color.New(color.FgYellow, color.Bold)
	header.Fprintf(w, "parser errors in %s:\n", pe.Path)
	for _, perr := range pe.Errors {
		color.New(color.FgRed).Fprintf(w, "%s\n", perr)
		fmt.Fprintln(w, util.GetContextLines(pe.Src, perr.Line, perr.Column))
	}
}

// loadConfig layers the config file under the command line flags. A missing
// default config file is not an error; a missing -config file is.
func loadConfig() (util.Configuration, error) {
	root := rootPath
	if root == "" {
		root = DefaultRootPath
	}

	path := configPath
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, util.DefaultConfigFile)
	}

	config, err := util.LoadConfiguration(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return config, err
		}
		config = util.DefaultConfiguration()
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.AquaHome = os.Getenv("AQUA_HOME")

	if rootPath != "" {
		config.RootPath = rootPath
	}
	if debugAST != "" {
		if debugAST != "json" && debugAST != "yaml" {
			return config, fmt.Errorf("unsupported -debug-ast format %q, want json or yaml", debugAST)
		}
		config.DebugAST = debugAST
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	return config, nil
}

func printVersion() {
	fmt.Printf("aqua version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: aqua [options] [filename]

Options:
  -root <path>         Set the root context for the program (used for imports). Default is '.'
  -config <path>       Load settings from a TOML file. Default is '<root>/aqua.toml' when present.
  -debug-ast <format>  Write the AST of every parsed file as json or yaml.
  -help                Display this help information and exit.
  -version             Display version information and exit.
  -log-level <level>   Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>     Specify a log file to write logs. Default is stderr.

Details:
With no filename aqua starts an interactive session. Imports are resolved
relative to the importing file, then under $AQUA_HOME/lib.

Examples:
  aqua                         Start the REPL
  aqua -log-level=debug        Start the REPL with debug logging enabled
  aqua script.aqua             Execute the provided Aqua file

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
