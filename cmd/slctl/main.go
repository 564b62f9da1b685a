// main.go - Admin control tool for Searchlens
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searchlens/internal"
	"searchlens/internal/period"
	"searchlens/internal/reports"
	"searchlens/internal/runs"
	"searchlens/internal/seeder"
	"searchlens/internal/settings"
	"searchlens/internal/sites"

	"log/slog"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	defaultAnalysisDays    = 28
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&MigrateCommand{},
	&CreateSiteCommand{},
	&AnalyzeCommand{},
	&SeedCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	// Parse global flags
	flag.Parse()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Printf("Warning: Failed to initialize app: %v", err)
		log.Println("Proceeding with limited functionality...")
		// Let the command handle this situation
	}

	// Ensure app is cleaned up
	defer func() {
		if app != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: Cleanup error: %v", err)
			}
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot run migrations")
	}

	log.Println("Running database migrations...")

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// CreateSiteCommand registers a site for analysis
type CreateSiteCommand struct{}

func (c *CreateSiteCommand) Name() string { return "create-site" }
func (c *CreateSiteCommand) Description() string {
	return "Registers a site (Search Console property) for analysis"
}

func (c *CreateSiteCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("create-site", flag.ContinueOnError)
	name := fs.String("name", "", "display name (defaults to the site URL)")
	ga4Property := fs.String("ga4-property", "", "GA4 property ID for organic traffic data")
	autoRefresh := fs.Bool("auto-refresh", false, "include this site in scheduled report refreshes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: %s [flags] <site-url>", c.Name())
	}
	siteURL := fs.Arg(0)

	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}
	db := app.DBManager.GetConnection()

	if err := sites.ValidateSiteURL(siteURL); err != nil {
		return err
	}

	if existing, err := sites.GetSiteByURL(db, siteURL); err == nil {
		log.Printf("Site %s already exists (id=%d)", siteURL, existing.ID)
		return nil
	}

	site := sites.Site{
		Name:          *name,
		SiteURL:       siteURL,
		GA4PropertyID: *ga4Property,
		AutoRefresh:   *autoRefresh,
	}
	if site.Name == "" {
		site.Name = siteURL
	}

	if err := sites.CreateSite(db, &site); err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	log.Printf("Created site %s (id=%d)", site.SiteURL, site.ID)
	return nil
}

// AnalyzeCommand builds a comparative report for one site and prints the
// significant movers.
type AnalyzeCommand struct{}

func (c *AnalyzeCommand) Name() string { return "analyze" }
func (c *AnalyzeCommand) Description() string {
	return "Builds a comparative search performance report for a site"
}

func (c *AnalyzeCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	from := fs.String("from", "", "current period start (YYYY-MM-DD)")
	to := fs.String("to", "", "current period end (YYYY-MM-DD)")
	compare := fs.String("compare", string(period.PresetPreviousPeriod), "comparison preset: previous_period, one_month_back, three_months_back, six_months_back or one_year_back")
	save := fs.Bool("save", false, "persist the report as an analysis run")
	advise := fs.Bool("advise", false, "generate an advisory summary of the significant movers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: %s [flags] <site-url>", c.Name())
	}
	siteURL := fs.Arg(0)

	if app == nil {
		return fmt.Errorf("app initialization failed, cannot run analysis")
	}
	db := app.DBManager.GetConnection()

	site, err := sites.GetSiteByURL(db, siteURL)
	if err != nil {
		return err
	}

	var current period.Range
	if *from != "" || *to != "" {
		current, err = period.Parse(*from, *to)
		if err != nil {
			return err
		}
	} else {
		current = period.LastNDays(time.Now().UTC(), defaultAnalysisDays)
	}

	comparison, err := period.ComparisonFor(current, period.Preset(*compare))
	if err != nil {
		return err
	}

	report, err := app.Builder.Build(ctx, site, current, comparison, app.Builder.Thresholds())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printReport(report)

	advisory := ""
	if *advise {
		if app.Handlers.Advisor == nil {
			return fmt.Errorf("advisory is not configured, set the LLM API key")
		}
		advisory, err = app.Handlers.Advisor.SummarizeTrends(ctx, site.SiteURL, report.Trends)
		if err != nil {
			return fmt.Errorf("advisory generation failed: %w", err)
		}
		fmt.Println("  Advisory:")
		fmt.Println(advisory)
	}

	if *save {
		run, err := runs.SaveReport(db, site.ID, "", "", report, advisory)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		log.Printf("Saved analysis run %d", run.ID)
	}

	return nil
}

func printReport(report *reports.Report) {
	fmt.Printf("Report for %s\n", report.SiteURL)
	fmt.Printf("  Current:    %s .. %s\n", report.CurrentRange.Start, report.CurrentRange.End)
	fmt.Printf("  Comparison: %s .. %s\n", report.ComparisonRange.Start, report.ComparisonRange.End)

	for _, totals := range report.Performance {
		fmt.Printf("  [%s] clicks=%d impressions=%d ctr=%.2f%% position=%.1f queries=%d\n",
			totals.Period, totals.TotalClicks, totals.TotalImpressions,
			totals.AvgCTR, totals.AvgPosition, totals.UniqueQueries)
	}

	if len(report.Trends) == 0 {
		fmt.Println("  No query showed a significant change.")
	} else {
		fmt.Printf("  Significant movers (%d):\n", len(report.Trends))
		for _, row := range report.Trends {
			fmt.Printf("    %-40q clicks %d -> %d (%s)\n",
				row.Query, row.ComparisonClicks, row.CurrentClicks, row.ChangeRate)
		}
	}

	if len(report.IntentGaps) > 0 {
		fmt.Printf("  Intent gaps (%d):\n", len(report.IntentGaps))
		for _, gap := range report.IntentGaps {
			fmt.Printf("    %-40q impressions=%d ctr=%.2f%% position=%.1f\n",
				gap.Query, gap.Impressions, gap.CTR, gap.Position)
		}
	}

	if len(report.Conversions) > 0 {
		fmt.Printf("  Top converting pages (%d):\n", len(report.Conversions))
		for _, row := range report.Conversions {
			fmt.Printf("    %-40s sessions=%d conversions=%d rate=%.2f%%\n",
				row.PagePath, row.Sessions, row.Conversions, row.ConversionRate*100)
		}
	}
}

// SeedCommand populates the DB with sample data
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the database with sample data" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	count := fs.Int("runs", 6, "number of synthetic runs to generate per site")
	siteURL := fs.String("site", "", "specific site to seed (seeds all defaults if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if app == nil {
		return fmt.Errorf("unable to initialise app")
	}

	se := seeder.NewSeeder(app.DBManager, slog.Default(), *count)

	// If a specific site is provided, seed only that site
	if *siteURL != "" {
		return se.SeedSite(ctx, *siteURL)
	}

	return se.Run(ctx)
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("cannot check status: app initialization failed")
	}

	db := app.DBManager.GetConnection()

	var siteCount int64
	if err := db.Model(&sites.Site{}).Count(&siteCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	var runCount int64
	if err := db.Model(&runs.AnalysisRun{}).Count(&runCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Sites: %d", siteCount)
	log.Printf("- Analysis runs: %d", runCount)
	if key, err := settings.GetAPIKey(db); err == nil && key != "" {
		log.Println("- API key: configured")
	} else {
		log.Println("- API key: missing")
	}

	// Check database statistics
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	log.Printf("- Max Open Connections: %d", sqlDB.Stats().MaxOpenConnections)
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)
	log.Printf("- In Use: %d", sqlDB.Stats().InUse)
	log.Printf("- Idle: %d", sqlDB.Stats().Idle)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fmt.Println("Usage: slctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	return nil
}

// Helper functions

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	fmt.Println("Usage: slctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	os.Exit(1)
}
