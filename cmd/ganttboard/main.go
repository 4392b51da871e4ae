package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/ganttboard/internal/board"
	"github.com/joshharrison/ganttboard/internal/config"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/reporter"
	"github.com/joshharrison/ganttboard/internal/session"
	"github.com/joshharrison/ganttboard/internal/state"
	"github.com/joshharrison/ganttboard/internal/store"
	"github.com/joshharrison/ganttboard/internal/store/memory"
	"github.com/joshharrison/ganttboard/internal/store/sqlstore"
	"github.com/joshharrison/ganttboard/internal/ui"
	"github.com/joshharrison/ganttboard/internal/viewer"
)

var (
	flagConfig   string
	flagData     string
	flagDSN      string
	flagJSON     bool
	flagAsOf     string
	flagSource   string
	flagFormat   string
	flagProject  string
	flagRange    string
	flagTab      string
	flagSearch   string
	flagStatus   string
	flagPriority string
	flagAssignee string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttboard",
		Short: "Project timelines, Gantt charts and critical paths",
		Long: `Ganttboard lays out project tasks on a Gantt timeline, draws their
dependency lines, computes critical paths and summarizes deadlines and
workload, in the terminal or through an HTTP viewer.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "YAML or JSON data file (default: built-in fixtures)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "MySQL DSN; takes precedence over --data")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Reference date for risk and deadlines (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagSource, "critical-source", "", "Critical flags: computed or flag")

	rootCmd.AddCommand(ganttCmd())
	rootCmd.AddCommand(criticalPathCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(deadlinesCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(workloadCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(selectCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file, .env and environment, then applies
// any global flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig, ".env")
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataFile = flagData
	}
	if flags.Changed("dsn") {
		cfg.DSN = flagDSN
	}
	if flags.Changed("as-of") {
		cfg.AsOf = flagAsOf
	}
	if flags.Changed("critical-source") {
		cfg.CriticalSource = flagSource
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openRepo picks the backend: MySQL when a DSN is set, else the data file,
// else the built-in fixtures.
func openRepo(ctx context.Context, cfg config.Config) (store.Repository, func(), error) {
	switch {
	case cfg.DSN != "":
		db, err := sqlstore.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case cfg.DataFile != "":
		ds, err := store.LoadFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return memory.New(ds), func() {}, nil
	default:
		return memory.NewFixtures(), func() {}, nil
	}
}

// buildService is shared setup for every command that reads the board.
func buildService(cmd *cobra.Command) (*board.Service, config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	w, err := cfg.Window()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	asOf, err := cfg.AsOfDate()
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("as-of: %w", err)
	}
	repo, closeRepo, err := openRepo(cmd.Context(), cfg)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	svc := board.New(repo, board.Options{
		Window:  w,
		AsOf:    asOf,
		Source:  cfg.Source(),
		Horizon: cfg.DeadlineHorizon,
	})
	return svc, cfg, closeRepo, nil
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project id or name slug, or \"all\"")
	cmd.Flags().StringVar(&flagRange, "range", "", "Time range (week, month, quarter, year)")
	cmd.Flags().StringVar(&flagSearch, "search", "", "Search task names and descriptions")
	cmd.Flags().StringVar(&flagStatus, "status", "", "Task status (pending, in-progress, completed)")
	cmd.Flags().StringVar(&flagPriority, "priority", "", "Task priority (low, medium, high, critical)")
	cmd.Flags().StringVar(&flagAssignee, "assignee", "", "Assignee name or slug")
}

// resolveSelection starts from the persisted selection and applies the
// selection flags that were set.
func resolveSelection(cmd *cobra.Command, cfg config.Config) (filter.Selection, error) {
	sel, err := state.LoadOrDefault(cfg.StateDir)
	if err != nil {
		return filter.Selection{}, err
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	var rangeErr error
	set("project", func() { sel.Project = flagProject })
	set("range", func() { sel.TimeRange, rangeErr = gantt.ParseTimeRange(flagRange) })
	set("tab", func() { sel.Tab = filter.Tab(flagTab) })
	set("search", func() { sel.Search = flagSearch })
	set("status", func() { sel.Status = flagStatus })
	set("priority", func() { sel.Priority = flagPriority })
	set("assignee", func() { sel.Assignee = flagAssignee })
	if rangeErr != nil {
		return filter.Selection{}, rangeErr
	}

	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return filter.Selection{}, err
	}
	return sel, nil
}

// projectArg returns the project from the first argument, falling back to
// the selection.
func projectArg(cmd *cobra.Command, cfg config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	sel, err := resolveSelection(cmd, cfg)
	if err != nil {
		return "", err
	}
	return sel.Project, nil
}

func ganttCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Draw the Gantt chart for the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			sel, err := resolveSelection(cmd, cfg)
			if err != nil {
				return err
			}
			view, err := svc.Gantt(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(view)
			}
			r := reporter.New(os.Stdout)
			r.Width = width
			r.PrintGantt(view)
			return nil
		},
	}
	addSelectionFlags(cmd)
	cmd.Flags().IntVar(&width, "width", reporter.DefaultWidth, "Chart width in columns")
	return cmd
}

func criticalPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical-path [project]",
		Short: "Show the critical path of a project, or of every task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			project, err := projectArg(cmd, cfg, args)
			if err != nil {
				return err
			}
			rep, err := svc.CriticalPath(cmd.Context(), project)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(rep)
			}
			reporter.New(os.Stdout).PrintCriticalPath(rep)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project id or name slug, or \"all\"")
	return cmd
}

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks the selection matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			sel, err := resolveSelection(cmd, cfg)
			if err != nil {
				return err
			}
			tasks, err := svc.Tasks(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(tasks)
			}
			reporter.New(os.Stdout).PrintTasks(tasks)
			return nil
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func projectsCmd() *cobra.Command {
	var q filter.ProjectQuery
	cmd := &cobra.Command{
		Use:   "projects [project]",
		Short: "List projects, or show one in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			r := reporter.New(os.Stdout)
			if len(args) == 1 {
				detail, err := svc.Project(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(detail)
				}
				r.PrintProjects([]board.ProjectSummary{detail.ProjectSummary})
				fmt.Println()
				r.PrintTasks(detail.Tasks)
				fmt.Println()
				r.PrintMilestones(detail.Milestones)
				fmt.Println()
				r.PrintCriticalPath(detail.CriticalPath)
				return nil
			}

			projects, err := svc.Projects(cmd.Context(), q)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(projects)
			}
			r.PrintProjects(projects)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Search, "search", "", "Search project names and descriptions")
	cmd.Flags().StringVar(&q.Status, "status", "", "Project status (planning, in-progress, review, completed)")
	cmd.Flags().StringVar(&q.Priority, "priority", "", "Project priority")
	return cmd
}

func deadlinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List open tasks due within the deadline horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			sel, err := resolveSelection(cmd, cfg)
			if err != nil {
				return err
			}
			deadlines, err := svc.Deadlines(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(deadlines)
			}
			reporter.New(os.Stdout).PrintDeadlines(deadlines)
			return nil
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [project]",
		Short: "Show headline numbers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			project, err := projectArg(cmd, cfg, args)
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context(), project)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(stats)
			}
			reporter.New(os.Stdout).PrintStats(stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project id or name slug, or \"all\"")
	return cmd
}

func workloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload [project]",
		Short: "Show open and critical tasks per assignee",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			project, err := projectArg(cmd, cfg, args)
			if err != nil {
				return err
			}
			loads, err := svc.Workload(cmd.Context(), project)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(loads)
			}
			reporter.New(os.Stdout).PrintWorkload(loads)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project id or name slug, or \"all\"")
	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz [project]",
		Short: "Print the task dependency graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			project, err := projectArg(cmd, cfg, args)
			if err != nil {
				return err
			}
			a, err := svc.Analyze(cmd.Context(), project)
			if err != nil {
				return err
			}

			r := reporter.New(os.Stdout)
			switch flagFormat {
			case "dot":
				r.PrintDOT(a.Graph, a.Critical)
			case "ascii", "":
				r.PrintASCIIDAG(a.Report, a.Graph, a.Critical)
			default:
				return fmt.Errorf("unknown format %q (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project id or name slug, or \"all\"")
	return cmd
}

func selectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Save the selection used by later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sel, err := resolveSelection(cmd, cfg)
			if err != nil {
				return err
			}

			by := cfg.DefaultUser
			if state.Exists(cfg.StateDir) {
				st, err := state.Load(cfg.StateDir)
				if err != nil {
					return err
				}
				if err := st.Update(sel, by); err != nil {
					return err
				}
			} else if _, err := state.New(cfg.StateDir, sel, by); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(sel)
			}
			fmt.Printf("%s Selection saved\n", ui.Green("✓"))
			printSelection(sel)
			return nil
		},
	}
	addSelectionFlags(cmd)
	cmd.Flags().StringVar(&flagTab, "tab", "", "View tab (gantt, critical-path, timeline)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sel, err := state.LoadOrDefault(cfg.StateDir)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(sel)
			}
			printSelection(sel)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := state.Clean(cfg.StateDir); err != nil {
				return fmt.Errorf("clear selection: %w", err)
			}
			fmt.Printf("%s Selection cleared\n", ui.Green("✓"))
			return nil
		},
	})
	return cmd
}

func printSelection(sel filter.Selection) {
	fmt.Printf("  Project:   %s\n", ui.Bold(sel.Project))
	if sel.TimeRange == "" {
		fmt.Printf("  Range:     %s\n", ui.Dim("configured window"))
	} else {
		fmt.Printf("  Range:     %s\n", sel.TimeRange)
	}
	fmt.Printf("  Tab:       %s\n", sel.Tab)
	for _, f := range []struct{ label, value string }{
		{"Search", sel.Search},
		{"Status", sel.Status},
		{"Priority", sel.Priority},
		{"Assignee", sel.Assignee},
	} {
		if f.value != "" {
			fmt.Printf("  %-10s %s\n", f.label+":", f.value)
		}
	}
}

func tokenCmd() *cobra.Command {
	var user, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for the viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.SessionSecret == "" {
				return fmt.Errorf("no session secret configured (set %sSESSION_SECRET)", config.EnvPrefix)
			}
			if user == "" {
				user = cfg.DefaultUser
			}
			if role == "" {
				role = cfg.DefaultRole
			}

			sess := session.New(user, role)
			tok, err := session.NewSigner(cfg.SessionSecret, cfg.SessionTTL).Issue(sess)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(map[string]any{"session": sess, "token": tok})
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User name (default: configured default user)")
	cmd.Flags().StringVar(&role, "role", "", "Role (default: configured default role)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer done()

			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			log, err := cfg.Logger(os.Stderr)
			if err != nil {
				return err
			}

			opts := viewer.Options{
				Logger:    log,
				Fallback:  session.Session{ID: "anonymous", User: cfg.DefaultUser, Role: cfg.DefaultRole},
				RateLimit: cfg.RateLimit,
				RateBurst: cfg.RateBurst,
			}
			if cfg.SessionSecret != "" {
				opts.Signer = session.NewSigner(cfg.SessionSecret, cfg.SessionTTL)
			} else {
				log.Warn("no session secret configured; every request uses the default session")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ui.PrintLogo(os.Stderr)
			log.WithField("source", cfg.Source()).WithField("as_of", cfg.AsOf).Info("starting ganttboard viewer")
			return viewer.New(svc, opts).ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the MySQL schema and load the data file or fixtures into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DSN == "" {
				return fmt.Errorf("seed needs a database (--dsn or %sDSN)", config.EnvPrefix)
			}

			ds := store.FixtureDataset()
			if cfg.DataFile != "" {
				if ds, err = store.LoadFile(cfg.DataFile); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			db, err := sqlstore.Open(ctx, cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return err
			}
			if err := db.Seed(ctx, ds); err != nil {
				return err
			}
			fmt.Printf("%s Seeded %d projects, %d tasks, %d members\n",
				ui.Green("✓"), len(ds.Projects), len(ds.Tasks), len(ds.Members))
			return nil
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the built-in fixtures to a YAML or JSON data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.WriteFile(args[0], store.Fixtures()); err != nil {
				return err
			}
			fmt.Printf("%s Wrote %s\n", ui.Green("✓"), args[0])
			return nil
		},
	}
}

// --- Output helpers ---

func outputJSON(v any) error {
	data, err := reporter.JSON(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
