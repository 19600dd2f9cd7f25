package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/songsnap/songsnap/internal/catalog"
	"github.com/songsnap/songsnap/internal/detect"
	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/intake"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/songsnap/songsnap/internal/store"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	db       *sql.DB
	detector detect.Detector
	clients  catalog.Factory

	queue    *store.SongQueueStore
	flagged  *store.FlaggedImageStore
	registry *store.IntegrationRegistry
	engine   *engine.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	DB       *sql.DB
	Detector detect.Detector
	Clients  catalog.Factory
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clients == nil {
		opts.Clients = catalog.NewFactory(opts.Config)
	}
	if opts.Detector == nil {
		opts.Detector = detect.NewAdapter(opts.Config.Classifier.URL, detect.AdapterOpts{
			APIKey:     opts.Config.Classifier.APIKey,
			MaxRetries: opts.Config.Classifier.MaxRetries,
		})
	}

	r := &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		detector: opts.Detector,
		clients:  opts.Clients,
	}

	if opts.DB != nil {
		r.attachDB(opts.DB)
	}

	return r
}

// SetLogger swaps the active logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// ensureStores opens the configured database on first use and wires the
// stores and engine. Commands that never touch the queue skip the cost.
func (r *Runner) ensureStores() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.attachDB(db)
	return nil
}

func (r *Runner) attachDB(db *sql.DB) {
	r.db = db
	r.queue = store.NewSongQueueStore(db)
	r.flagged = store.NewFlaggedImageStore(db)
	r.registry = store.NewIntegrationRegistry(db)
	r.engine = engine.NewEngine(r.queue, r.registry, r.clients)
}

// pipeline builds the intake pipeline over the current stores.
func (r *Runner) pipeline() *intake.Pipeline {
	return intake.NewPipeline(r.detector, r.queue, r.flagged, r.logger)
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
