package main

import (
	"fmt"
	"os"

	"github.com/johns/traceview/internal/archive"
	"github.com/johns/traceview/internal/config"
	"github.com/johns/traceview/internal/diff"
	"github.com/johns/traceview/internal/index"
	"github.com/johns/traceview/internal/trace"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	switch os.Args[1] {
	case "scan":
		requireArg(3, "usage: traceview scan <trace.jsonl>")
		sum, err := trace.ScanFile(os.Args[2], "", "")
		if err != nil {
			fatal("scan: %v", err)
		}
		printSummary(sum)

	case "show":
		requireArg(3, "usage: traceview show <trace.jsonl>")
		printConversation(parseTrace(os.Args[2]))

	case "files":
		requireArg(3, "usage: traceview files <trace.jsonl>")
		conv := parseTrace(os.Args[2])
		for _, f := range conv.FilesTouched() {
			fmt.Printf("%-9s %3dx  %s\n", f.Action, f.Count, f.Path)
		}

	case "timeline":
		requireArg(4, "usage: traceview timeline <trace.jsonl> <file-path>")
		conv := parseTrace(os.Args[2])
		for _, ev := range conv.FileTimeline(os.Args[3]) {
			fmt.Printf("step %d: %s %s\n", ev.Step, ev.Usage.Tool, ev.Usage.Summary)
		}

	case "diff":
		requireArg(4, "usage: traceview diff <trace.jsonl> <file-path>")
		conv := parseTrace(os.Args[2])
		printFileDiffs(conv, os.Args[3], cfg.Diff.ContextLines)

	case "index":
		runIndex(cfg, os.Args[2:])

	case "archive":
		requireArg(3, "usage: traceview archive <trace.jsonl>")
		dest, err := archive.Archive(os.Args[2], cfg.Archive.Dir)
		if err != nil {
			fatal("archive: %v", err)
		}
		fmt.Printf("archived: %s\n", dest)

	case "version":
		fmt.Printf("traceview v%s\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runIndex(cfg config.Config, args []string) {
	db, err := index.Open(cfg.IndexPath())
	if err != nil {
		fatal("open index: %v", err)
	}
	defer db.Close()

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "rebuild":
		res, err := db.Rebuild(cfg.ProjectsDir)
		if err != nil {
			fatal("rebuild: %v", err)
		}
		fmt.Printf("rescanned %d, fresh %d\n", res.Scanned, res.Fresh)

	case "list":
		var sums []trace.SessionSummary
		if len(args) > 1 {
			sums, err = db.ByProject(args[1])
		} else {
			sums, err = db.All()
		}
		if err != nil {
			fatal("list: %v", err)
		}
		for _, s := range sums {
			fmt.Printf("%s  %-20s %4d msgs  %s\n",
				s.Modified.Format("2006-01-02 15:04"), s.ProjectName,
				s.MessageCount, s.FirstPrompt)
		}

	default:
		fatal("usage: traceview index [rebuild|list [project]]")
	}
}

func printSummary(sum trace.SessionSummary) {
	fmt.Printf("session:  %s\n", sum.SessionID)
	fmt.Printf("branch:   %s\n", sum.GitBranch)
	fmt.Printf("messages: %d\n", sum.MessageCount)
	if !sum.Created.IsZero() {
		fmt.Printf("created:  %s\n", sum.Created.Format("2006-01-02 15:04:05"))
	}
	if !sum.Modified.IsZero() {
		fmt.Printf("modified: %s\n", sum.Modified.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("prompt:   %s\n", sum.FirstPrompt)
}

func printConversation(conv trace.Conversation) {
	for _, m := range conv.Messages {
		ts := ""
		if !m.Timestamp.IsZero() {
			ts = m.Timestamp.Format("15:04:05")
		}
		fmt.Printf("[%s] %s: %s\n", ts, m.Role, m.Text)
		for _, u := range m.ToolUsages {
			fmt.Printf("    tool %s: %s\n", u.Tool, u.Summary)
		}
	}
}

func printFileDiffs(conv trace.Conversation, path string, context int) {
	for _, ev := range conv.FileTimeline(path) {
		if ev.Usage.Action != trace.ActionCreated && ev.Usage.Action != trace.ActionModified {
			continue
		}
		fmt.Printf("--- step %d: %s ---\n", ev.Step, ev.Usage.Tool)
		lines := diff.Compute(ev.Usage.OldContent, ev.Usage.NewContent)
		for _, h := range diff.GroupHunks(lines, context) {
			fmt.Println(h.Header())
			for _, l := range h.Lines {
				switch l.Kind {
				case diff.Added:
					fmt.Printf("+%s\n", l.Content)
				case diff.Removed:
					fmt.Printf("-%s\n", l.Content)
				default:
					fmt.Printf(" %s\n", l.Content)
				}
			}
		}
	}
}

func requireArg(n int, msg string) {
	if len(os.Args) < n {
		fatal("%s", msg)
	}
}

func parseTrace(path string) trace.Conversation {
	conv, err := trace.ParseFile(path, "", "")
	if err != nil {
		fatal("parse: %v", err)
	}
	return conv
}

func usage() {
	fmt.Fprintf(os.Stderr, `traceview v%s - coding-assistant trace inspector

Usage:
  traceview scan <trace.jsonl>              Print session metadata
  traceview show <trace.jsonl>              Print the reconstructed conversation
  traceview files <trace.jsonl>             List files touched by the session
  traceview timeline <trace.jsonl> <path>   Show one file's change history
  traceview diff <trace.jsonl> <path>       Render diffs for one file's changes
  traceview index [rebuild|list [project]]  Manage the session index
  traceview archive <trace.jsonl>           Compress a trace into the archive
  traceview version                         Print version

Configuration: ~/.config/traceview/config.toml
`, version)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "traceview: "+format+"\n", args...)
	os.Exit(1)
}
