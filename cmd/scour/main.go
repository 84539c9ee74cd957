// scour searches mounted filesystems for pattern matches in one pass.
//
// Usage:
//
//	scour [flags] PATTERN [ROOTS]
//
// PATTERN uses the scour glob grammar: '*' matches within one path
// component, '?' optionally matches one byte, '|' separates
// alternatives. ROOTS is a '|'-joined list of starting directories
// (default "/").
//
// Flags:
//
//	--mount PATH:SOURCE   Mount a filesystem (repeatable)
//	                      SOURCE formats:
//	                        ./dir            LocalFS (host directory)
//	                        sqlite:file.db   SQLiteFS (SQLite database)
//	                        http(s)://host   HTTPFS (remote server)
//	                        memfs            MemFS (in-memory)
//	--config FILE         Load mounts and defaults from a YAML file
//	--env FILE            Load environment variables before configuring
//	--first               Stop at the first match
//	--stat                Include metadata with each match
//	--include-root        Report full paths instead of entry names
//	--buffer N            Result buffer size in bytes (default 65536)
//	--sed EXPR            Rewrite reported paths through a sed expression
//	--color MODE          Colorize output: auto, always, never
//	--debug               Enable debug logging to stderr
//	--version             Show version and exit
//
// SCOUR_CONFIG and SCOUR_BUFFER provide defaults for --config and
// --buffer, and can come from the --env file.
//
// Example:
//
//	scour --mount /data:./workspace --stat '*.go|*.md' /data
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rwtodd/Go.Sed/sed"

	scour "github.com/jackfish212/scour"
	"github.com/jackfish212/scour/mounts"
)

const defaultBufferSize = 64 * 1024

// mountFlags collects repeatable --mount flags.
type mountFlags []string

func (m *mountFlags) String() string { return strings.Join(*m, ", ") }
func (m *mountFlags) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var mntFlags mountFlags
	configPath := flag.String("config", "", "YAML configuration file")
	envPath := flag.String("env", "", "Environment file to load")
	first := flag.Bool("first", false, "Stop at the first match")
	stat := flag.Bool("stat", false, "Include metadata with each match")
	includeRoot := flag.Bool("include-root", false, "Report full paths instead of entry names")
	bufSize := flag.Int("buffer", defaultBufferSize, "Result buffer size in bytes")
	sedExpr := flag.String("sed", "", "Rewrite reported paths through a sed expression")
	colorMode := flag.String("color", "auto", "Colorize output: auto, always, never")
	debug := flag.Bool("debug", false, "Enable debug logging to stderr")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Var(&mntFlags, "mount", "Mount specification PATH:SOURCE (repeatable)")
	flag.Parse()

	if *showVersion {
		info := scour.GetVersionInfo()
		fmt.Fprintf(os.Stdout, "scour %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			slog.Error("loading environment file", "path", *envPath, "error", err)
			os.Exit(1)
		}
	}

	// Environment defaults fill in for flags left unset.
	if *configPath == "" {
		*configPath = os.Getenv("SCOUR_CONFIG")
	}
	if *bufSize == defaultBufferSize {
		if env := os.Getenv("SCOUR_BUFFER"); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil || n <= 0 {
				slog.Error("invalid SCOUR_BUFFER", "value", env)
				os.Exit(1)
			}
			*bufSize = n
		}
	}

	switch *colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "usage: scour [flags] PATTERN [ROOTS]")
		os.Exit(2)
	}
	pattern := flag.Arg(0)
	roots := "/"
	if flag.NArg() == 2 {
		roots = flag.Arg(1)
	}

	flags := scour.Flags(0)
	if *first {
		flags |= scour.StopAtFirst
	}
	if *stat {
		flags |= scour.IncludeMetadata
	}
	if *includeRoot {
		flags |= scour.IncludeRoot
	}

	v := scour.New()

	if *configPath != "" {
		cfg, err := scour.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		flags |= cfg.Defaults.Flags()
		if cfg.Defaults.BufferSize > 0 && *bufSize == defaultBufferSize {
			*bufSize = cfg.Defaults.BufferSize
		}
		for _, m := range cfg.Mounts {
			if err := mountFromSpec(v, m.Path+":"+m.Source); err != nil {
				slog.Error("mount failed", "path", m.Path, "source", m.Source, "error", err)
				os.Exit(1)
			}
		}
	}

	for _, spec := range mntFlags {
		if err := mountFromSpec(v, spec); err != nil {
			slog.Error("mount failed", "spec", spec, "error", err)
			os.Exit(1)
		}
		slog.Debug("mounted", "spec", spec)
	}

	if len(v.MountTable().All()) == 0 {
		if err := v.Mount("/", mounts.NewLocalFS("/", scour.PermRead)); err != nil {
			slog.Error("mounting host root", "error", err)
			os.Exit(1)
		}
	}

	for _, info := range v.MountTable().AllInfo() {
		if mp, ok := info.Provider.(scour.MountInfoProvider); ok {
			kind, source := mp.MountInfo()
			slog.Debug("mount", "path", info.Path, "kind", kind, "source", source, "caps", info.Capabilities)
		}
	}

	var rewrite *sed.Engine
	if *sedExpr != "" {
		engine, err := sed.New(strings.NewReader(*sedExpr))
		if err != nil {
			slog.Error("invalid sed expression", "expr", *sedExpr, "error", err)
			os.Exit(1)
		}
		rewrite = engine
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	buf := make([]byte, *bufSize)
	count, n, err := v.Search(ctx, roots, pattern, flags, buf)
	if err != nil {
		slog.Error("search failed", "pattern", pattern, "roots", roots, "error", err)
		os.Exit(1)
	}

	records, err := scour.ParseRecords(buf[:n])
	if err != nil {
		slog.Error("decoding results", "error", err)
		os.Exit(1)
	}

	pathColor := color.New(color.FgCyan)
	for _, rec := range records {
		p := rec.Path
		if rewrite != nil {
			rewritten, err := rewrite.RunString(p)
			if err != nil {
				slog.Error("sed rewrite failed", "path", p, "error", err)
				os.Exit(1)
			}
			p = strings.TrimSuffix(rewritten, "\n")
		}
		if rec.Meta != "" {
			fmt.Printf("%s\t%s\n", pathColor.Sprint(p), rec.Meta)
		} else {
			fmt.Println(pathColor.Sprint(p))
		}
	}

	slog.Debug("search complete", "matches", count, "bytes", n)
}

// mountFromSpec parses "PATH:SOURCE" and mounts the appropriate
// provider.
//
// Supported SOURCE formats:
//
//	memfs             → in-memory MemFS
//	sqlite:file.db    → SQLiteFS backed by file.db
//	http(s)://host    → HTTPFS against a remote server
//	./dir or /abs     → LocalFS pointing at a host directory
func mountFromSpec(v *scour.VirtualFS, spec string) error {
	idx := strings.Index(spec, ":")
	if idx < 1 {
		return fmt.Errorf("invalid mount spec %q (expected PATH:SOURCE)", spec)
	}
	mountPath := spec[:idx]
	source := spec[idx+1:]

	if !strings.HasPrefix(mountPath, "/") {
		mountPath = "/" + mountPath
	}

	switch {
	case source == "memfs":
		return v.Mount(mountPath, mounts.NewMemFS(scour.PermRW))

	case strings.HasPrefix(source, "sqlite:"):
		dbPath := strings.TrimPrefix(source, "sqlite:")
		fs, err := mounts.NewSQLiteFS(dbPath, scour.PermRW)
		if err != nil {
			return fmt.Errorf("SQLiteFS %q: %w", dbPath, err)
		}
		return v.Mount(mountPath, fs)

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return v.Mount(mountPath, mounts.NewHTTPFS(source))

	default:
		return v.Mount(mountPath, mounts.NewLocalFS(source, scour.PermRead))
	}
}
