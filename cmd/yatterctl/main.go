// Yatter CLI: sign in, inspect the cached timeline and the sync daemon.
//
// Usage:
//
//	yatterctl <command> [flags]
//
// Commands:
//
//	login     Sign in and store the access token
//	logout    Remove the stored access token
//	status    Show session, cache and sync daemon status
//	timeline  Fetch or show the cached public timeline
//	analyze   Summarize the cached timeline
//	version   Print version information
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/analysis"
	"github.com/Mr-Dark-debug/yatter/internal/app"
	"github.com/Mr-Dark-debug/yatter/internal/config"
	"github.com/Mr-Dark-debug/yatter/internal/logger"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	ysync "github.com/Mr-Dark-debug/yatter/internal/sync"
	"github.com/Mr-Dark-debug/yatter/pkg/jsonutil"
	"github.com/Mr-Dark-debug/yatter/pkg/timeutil"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	switch os.Args[1] {
	case "login":
		cmdLogin(cfg)
	case "logout":
		cmdLogout(cfg)
	case "status":
		cmdStatus(cfg)
	case "timeline":
		cmdTimeline(cfg)
	case "analyze":
		cmdAnalyze(cfg)
	case "version":
		fmt.Printf("Yatter v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Yatter - a terminal client for Yatter servers

Usage:
  yatterctl <command> [flags]

Commands:
  login      Sign in and store the access token
  logout     Remove the stored access token
  status     Show session, cache and sync daemon status
  timeline   Fetch or show the cached public timeline
  analyze    Summarize the cached timeline
  version    Print version information

Run 'yatterctl <command> --help' for details on each command.`)
}

// commonFlags registers the flags every command that opens the store
// accepts.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Yatter server URL")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database file")
}

func openApp(cfg config.Config) *app.App {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	a, err := app.Open(cfg, logger.Setup(os.Stderr, logLevel()))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	return a
}

// logLevel keeps the CLI quiet unless YATTER_DEBUG is set.
func logLevel() slog.Level {
	if os.Getenv("YATTER_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// cmdLogin exchanges credentials for a token and stores it.
func cmdLogin(cfg config.Config) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	commonFlags(fs, &cfg)
	username := fs.String("username", "", "Account username (required)")
	password := fs.String("password", os.Getenv("YATTER_PASSWORD"), "Account password (default: $YATTER_PASSWORD, else read from stdin)")
	fs.Parse(os.Args[2:])

	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(os.Stderr, "Error: --username is required")
		fs.Usage()
		os.Exit(1)
	}
	if *password == "" {
		*password = readPassword()
	}

	a := openApp(cfg)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := a.Login().Execute(ctx, *username, *password); err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			log.Fatalf("Login failed: wrong username or password")
		}
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("Signed in to %s as @%s\n", cfg.ServerURL, *username)
}

func readPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("Reading password: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}

// cmdLogout removes the stored token.
func cmdLogout(cfg config.Config) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	commonFlags(fs, &cfg)
	fs.Parse(os.Args[2:])

	a := openApp(cfg)
	defer a.Close()

	if err := a.Logout().Execute(context.Background()); err != nil {
		log.Fatalf("Logout failed: %v", err)
	}
	fmt.Println("Signed out.")
}

// cmdStatus shows the stored session, the last sync runs and, when a
// metrics address is given, the live state of yatter-sync.
func cmdStatus(cfg config.Config) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	commonFlags(fs, &cfg)
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "yatter-sync HTTP address to query")
	fs.Parse(os.Args[2:])

	a := openApp(cfg)
	defer a.Close()
	ctx := context.Background()

	loggedIn, err := a.CheckLogin().Execute(ctx)
	if err != nil {
		log.Fatalf("Reading session: %v", err)
	}
	fmt.Printf("  Server:    %s\n", cfg.ServerURL)
	fmt.Printf("  Database:  %s\n", cfg.DBPath)
	if loggedIn {
		username, _ := a.Store.GetUsername(ctx)
		fmt.Printf("  Session:   signed in as @%s\n", username)
	} else {
		fmt.Println("  Session:   signed out")
	}

	cached, err := a.Statuses.CachedPublicTimeline(ctx)
	if err != nil {
		log.Fatalf("Reading cache: %v", err)
	}
	fmt.Printf("  Cached:    %d statuses\n", len(cached))

	runs, err := a.Store.LatestSyncRuns(ctx, 5)
	if err != nil {
		log.Fatalf("Reading sync runs: %v", err)
	}
	if len(runs) > 0 {
		fmt.Println()
		fmt.Println("  Recent sync runs:")
		for _, r := range runs {
			printSyncRun(r)
		}
	}

	if cfg.MetricsAddr != "" {
		fmt.Println()
		printDaemonStatus(cfg.MetricsAddr)
	}
}

func printSyncRun(r model.SyncRun) {
	took := timeutil.FormatDuration(time.Duration(r.FinishedAt-r.StartedAt) * time.Millisecond)
	outcome := fmt.Sprintf("%d statuses", r.StatusCount)
	if r.Error != "" {
		outcome = "failed: " + jsonutil.TruncateString(r.Error, 60)
	}
	fmt.Printf("    %s  %-8s  %s  %s\n",
		timeutil.FormatMillis(r.StartedAt), shortRunID(r.RunID), took, outcome)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printDaemonStatus(addr string) {
	url := fmt.Sprintf("http://%s/api/status", addr)
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Println("⚠ yatter-sync is not running.")
		fmt.Printf("  Start it with: yatter-sync --metrics %s\n", addr)
		fmt.Printf("  (tried: %s)\n", url)
		return
	}
	defer resp.Body.Close()

	var status struct {
		Stats ysync.Stats `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatalf("Failed to decode daemon status: %v", err)
	}

	fmt.Println("✅ yatter-sync is running.")
	fmt.Printf("  Runs:       %d\n", status.Stats.Runs)
	fmt.Printf("  Failures:   %d\n", status.Stats.Failures)
	fmt.Printf("  Last count: %d\n", status.Stats.LastCount)
	fmt.Printf("  Interval:   %s\n", status.Stats.IntervalStr)
	fmt.Printf("  Uptime:     %ds\n", status.Stats.UptimeSecs)
}

// cmdTimeline fetches the public timeline (refreshing the cache) or
// prints the cached copy.
func cmdTimeline(cfg config.Config) {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	commonFlags(fs, &cfg)
	fs.IntVar(&cfg.TimelineLimit, "limit", cfg.TimelineLimit, "Maximum statuses to fetch (1-80)")
	cached := fs.Bool("cached", false, "Show the cached timeline without contacting the server")
	outputFormat := fs.String("format", "text", "Output format: text, json")
	fs.Parse(os.Args[2:])

	a := openApp(cfg)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	var (
		statuses []model.Status
		err      error
	)
	if *cached {
		statuses, err = a.Statuses.CachedPublicTimeline(ctx)
	} else {
		statuses, err = a.Statuses.FetchPublicTimeline(ctx)
	}
	if err != nil {
		log.Fatalf("Timeline failed: %v", err)
	}

	switch *outputFormat {
	case "json":
		if err := jsonutil.WriteIndented(os.Stdout, statuses); err != nil {
			log.Fatal(err)
		}
	case "text":
		now := time.Now()
		for _, s := range statuses {
			printStatus(s, now)
		}
		if len(statuses) == 0 {
			fmt.Println("No statuses.")
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

func printStatus(s model.Status, now time.Time) {
	name := s.Account.DisplayName
	if name == "" {
		name = s.Account.Username
	}
	age := ""
	if !s.CreatedAt.IsZero() {
		age = "  · " + timeutil.RelativeTime(s.CreatedAt, now)
	}
	fmt.Printf("%s @%s%s\n", name, s.Account.Username, age)
	for _, line := range strings.Split(s.Content, "\n") {
		fmt.Printf("  %s\n", line)
	}
	for _, m := range s.MediaAttachments {
		fmt.Printf("  [%s] %s\n", m.Type, m.URL)
	}
	fmt.Println()
}

// cmdAnalyze summarizes the cached timeline.
func cmdAnalyze(cfg config.Config) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	commonFlags(fs, &cfg)
	limit := fs.Int("limit", 200, "Maximum cached statuses to analyze")
	outputFormat := fs.String("format", "markdown", "Output format: markdown, json")
	fs.Parse(os.Args[2:])

	a := openApp(cfg)
	defer a.Close()

	analyzer := analysis.NewAnalyzer(a.Store)
	digest, err := analyzer.Digest(context.Background(), *limit)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	switch *outputFormat {
	case "json":
		if err := jsonutil.WriteIndented(os.Stdout, digest); err != nil {
			log.Fatal(err)
		}
	case "markdown":
		fmt.Print(analyzer.FormatReport(digest))
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}
