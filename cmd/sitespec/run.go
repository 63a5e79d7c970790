package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gnana997/sitespec/pkg/audit"
	"github.com/gnana997/sitespec/pkg/findings"
	"github.com/gnana997/sitespec/pkg/links"
	mcpserver "github.com/gnana997/sitespec/pkg/mcp"
	"github.com/gnana997/sitespec/pkg/mcplog"
	"github.com/gnana997/sitespec/pkg/resolver"
	"github.com/gnana997/sitespec/pkg/site"
	"github.com/gnana997/sitespec/pkg/theme"
	"github.com/gnana997/sitespec/pkg/tokens"
	"github.com/gnana997/sitespec/pkg/util"
)

// commonOpts are the flags shared by every site-reading command.
type commonOpts struct {
	root      string
	tokens    string
	links     string
	logLevel  string
	logFormat string
}

func addCommonFlags(fs *flag.FlagSet) *commonOpts {
	opts := &commonOpts{}
	fs.StringVar(&opts.root, "root", ".", "site root directory")
	fs.StringVar(&opts.tokens, "tokens", "", "token source path (default: site/tokens.yaml under root)")
	fs.StringVar(&opts.links, "links", "", "link graph source path (default: site/links.yaml under root)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	return opts
}

// env is everything a command needs after setup: the discovered site, the
// parsed sources, and the restored theme selection.
type env struct {
	opts     *commonOpts
	logger   *slog.Logger
	site     *site.Site
	source   *tokens.Source
	graph    *links.Graph
	selector *theme.Selector
}

// setup loads all inputs. A failure here (unreadable token or graph source,
// unreadable root) is fatal to the whole run.
func setup(opts *commonOpts) (*env, error) {
	logger := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(opts.logLevel),
		Format: util.LogFormat(opts.logFormat),
		Output: os.Stderr,
	})

	st, err := site.New(site.DefaultConfig(opts.root), logger)
	if err != nil {
		return nil, err
	}

	source, err := tokens.Load(resolveTokensPath(opts.root, opts.tokens))
	if err != nil {
		return nil, err
	}

	graph, err := links.Load(resolveLinksPath(opts.root, opts.links))
	if err != nil {
		return nil, err
	}
	for _, verr := range graph.Validate(st.Exists) {
		logger.Warn("link graph issue", "error", verr)
	}

	selector := theme.NewSelector(source.Themes(), theme.NewFileStore(themeStatePath(opts.root)), logger)

	return &env{
		opts:     opts,
		logger:   logger,
		site:     st,
		source:   source,
		graph:    graph,
		selector: selector,
	}, nil
}

// activeTable returns the token table for the persisted theme selection.
func (e *env) activeTable() *tokens.Table {
	if t, ok := e.source.Table(e.selector.Get()); ok {
		return t
	}
	return e.source.Default()
}

// runTokens resolves literals across the site, writing rewritten pages in
// place unless --dry-run is set. Returns clean=true when nothing was left
// unresolved.
func runTokens(args []string) (bool, error) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	opts := addCommonFlags(fs)
	dryRun := fs.Bool("dry-run", false, "report changes without writing pages")
	fixLegacy := fs.Bool("fix-legacy", false, "upgrade deprecated token references to their successors")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	table := e.activeTable()
	r := resolver.New()
	var all []findings.Finding
	rewritten := 0

	for _, page := range e.site.Pages() {
		text, err := e.site.Read(page)
		if err != nil {
			all = append(all, findings.Finding{
				Kind: findings.KindPageReadError, Page: page, Line: 1, Detail: err.Error(),
			})
			continue
		}
		res := r.Resolve(page, text, table, e.source.Legacy(), resolver.Options{ApplyLegacy: *fixLegacy})
		all = append(all, res.Findings...)
		if res.Text == text {
			continue
		}
		rewritten++
		if *dryRun {
			e.logger.Info("would rewrite page", "page", page, "replacements", res.Replacements)
			continue
		}
		if err := e.site.Write(page, res.Text); err != nil {
			return false, err
		}
		e.logger.Info("rewrote page", "page", page, "replacements", res.Replacements)
	}

	report := findings.NewReport(all)
	fmt.Print(report.RenderText())
	e.logger.Info("token pass complete", "theme", table.Theme, "pagesRewritten", rewritten)
	return report.Empty(), nil
}

// runLinks applies the graph to every page: anchor rewriting plus the
// additive breadcrumb and related-block steps.
func runLinks(args []string) (bool, error) {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	opts := addCommonFlags(fs)
	dryRun := fs.Bool("dry-run", false, "report changes without writing pages")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	var all []findings.Finding
	rewritten := 0

	for _, page := range e.site.Pages() {
		text, err := e.site.Read(page)
		if err != nil {
			all = append(all, findings.Finding{
				Kind: findings.KindPageReadError, Page: page, Line: 1, Detail: err.Error(),
			})
			continue
		}

		out := links.ApplyEdges(text, page, e.graph)
		out = insertOrRecord(out, page, &all, func(t string) (string, error) {
			return links.InsertBreadcrumbs(t, page, e.graph)
		})
		out = insertOrRecord(out, page, &all, func(t string) (string, error) {
			return links.InsertBlocks(t, page, e.graph)
		})

		if out == text {
			continue
		}
		rewritten++
		if *dryRun {
			e.logger.Info("would rewrite page", "page", page)
			continue
		}
		if err := e.site.Write(page, out); err != nil {
			return false, err
		}
		e.logger.Info("rewrote page", "page", page)
	}

	report := findings.NewReport(all)
	fmt.Print(report.RenderText())
	e.logger.Info("link pass complete", "pagesRewritten", rewritten)
	return report.Empty(), nil
}

// insertOrRecord runs one additive insertion step; a missing insertion
// point becomes a finding and leaves the page text unchanged for that
// feature only.
func insertOrRecord(text, page string, all *[]findings.Finding, step func(string) (string, error)) string {
	out, err := step(text)
	if err != nil {
		var noPoint *links.ErrNoInsertionPoint
		if errors.As(err, &noPoint) {
			*all = append(*all, findings.Finding{
				Kind: findings.KindNoInsertionPoint, Page: page, Line: 1, Detail: noPoint.Error(),
			})
		} else {
			*all = append(*all, findings.Finding{
				Kind: findings.KindPageReadError, Page: page, Line: 1, Detail: err.Error(),
			})
		}
		return text
	}
	return out
}

// runAudit is the read-only pass over all pages.
func runAudit(args []string) (bool, error) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	opts := addCommonFlags(fs)
	format := fs.String("format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	report := audit.New(e.site, e.activeTable(), e.source.Legacy(), e.graph, e.logger).Run()
	if err := printReport(report, *format); err != nil {
		return false, err
	}
	return report.Empty(), nil
}

func printReport(report *findings.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
		fmt.Print(report.RenderText())
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// runTheme handles `theme get`, `theme set <name>`, and `theme list`.
func runTheme(args []string) (bool, error) {
	if len(args) < 1 {
		return false, fmt.Errorf("usage: sitespec theme get|set <name>|list")
	}
	sub := args[0]

	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	opts := addCommonFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return false, err
	}
	rest := fs.Args()

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	switch sub {
	case "get":
		fmt.Println(e.selector.Get())
		return true, nil
	case "list":
		active := e.selector.Get()
		for _, t := range e.selector.Themes() {
			marker := " "
			if t == active {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, t)
		}
		return true, nil
	case "set":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: sitespec theme set <name>")
		}
		if err := e.selector.Set(rest[0]); err != nil {
			return false, err
		}
		fmt.Println(e.selector.Get())
		return true, nil
	default:
		return false, fmt.Errorf("unknown theme subcommand: %s", sub)
	}
}

// runWatch audits once, then re-audits whenever a page or source file
// changes, until interrupted.
func runWatch(args []string) (bool, error) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	opts := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	var runMu sync.Mutex
	runOnce := func() {
		runMu.Lock()
		defer runMu.Unlock()
		// Sources may have changed; reload them fresh each run.
		source, err := tokens.Load(resolveTokensPath(opts.root, opts.tokens))
		if err != nil {
			e.logger.Error("failed to reload token source", "error", err)
			source = e.source
		}
		graph, err := links.Load(resolveLinksPath(opts.root, opts.links))
		if err != nil {
			e.logger.Error("failed to reload link graph", "error", err)
			graph = e.graph
		}
		e.source, e.graph = source, graph
		if err := e.site.Refresh(); err != nil {
			e.logger.Error("failed to refresh page set", "error", err)
			return
		}
		report := audit.New(e.site, e.activeTable(), e.source.Legacy(), e.graph, e.logger).Run()
		fmt.Print(report.RenderText())
	}

	watcher, err := site.NewWatcher(e.site, site.WatchOptions{
		DebounceMs: 200,
		ExtraPaths: []string{
			resolveTokensPath(opts.root, opts.tokens),
			resolveLinksPath(opts.root, opts.links),
		},
	}, func(changed string) {
		e.logger.Info("change detected", "path", changed)
		runOnce()
	}, e.logger)
	if err != nil {
		return false, err
	}
	if err := watcher.Start(); err != nil {
		return false, err
	}
	defer watcher.Stop()

	runOnce()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return true, nil
}

// runServe starts the MCP server on stdio.
func runServe(args []string) (bool, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	opts := addCommonFlags(fs)
	logPath := fs.String("mcp-log", "", "JSONL tool-call log path (empty disables)")
	if err := fs.Parse(args); err != nil {
		return false, err
	}

	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.site.Close()

	toolLog, err := mcplog.NewLogger(*logPath)
	if err != nil {
		return false, err
	}
	if toolLog != nil {
		defer toolLog.Close()
	}

	srv := mcpserver.NewServer(e.site, e.source, e.graph, e.selector, toolLog)
	if err := srv.ServeStdio(); err != nil {
		return false, err
	}
	return true, nil
}
