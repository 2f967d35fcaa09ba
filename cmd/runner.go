package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/catalog"
	"github.com/desertthunder/ankix/internal/repositories"
	"github.com/desertthunder/ankix/internal/services"
	"github.com/desertthunder/ankix/internal/shared"
	"github.com/desertthunder/ankix/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	client services.Service
	logger *log.Logger
	output io.Writer

	ownClient bool // client was built from config and follows SetLogger
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client services.Service
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a Client, one is built from the config's api section.
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

	r := &Runner{
		config: opts.Config,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
	}
	if r.client == nil {
		r.client = r.newClient()
		r.ownClient = true
	}
	return r
}

// newClient builds a backend client from the config's api section.
func (r *Runner) newClient() *services.Client {
	return services.NewClient(services.ClientOpts{
		BaseURL:      r.config.API.BaseURL,
		HTTPClient:   services.NewHTTPClient(context.Background(), r.config.API.Token, r.config.Timeout()),
		Logger:       shared.WithLogger(r.logger, "component", "client"),
		FallbackDeck: r.config.API.FallbackDeck,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		uploadCommand, statusCommand, decksCommand, cardsCommand, reviewCommand,
		historyCommand, setupCommand, mockCommand, healthCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before raises the log level when --verbose is set.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger.
//
// A client built by [NewRunner] is rebuilt so its requests log to l too.
// A client passed in [RunnerOpts] keeps its own logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.ownClient {
		r.client = r.newClient()
	}
}

// pollerOpts returns the status poller settings from config.
func (r *Runner) pollerOpts() tasks.PollerOpts {
	return tasks.PollerOpts{
		Interval:     r.config.PollInterval(),
		DisplayDelay: r.config.DisplayDelay(),
		Logger:       shared.WithLogger(r.logger, "component", "poller"),
	}
}

// openHistory opens the export history database.
//
// It returns a nil repository and a no-op close func when database.path is empty.
func (r *Runner) openHistory() (*repositories.ExportRepository, func(), error) {
	if r.config.Database.Path == "" {
		return nil, func() {}, nil
	}

	db, err := shared.OpenHistory(r.config.Database.Path)
	if err != nil {
		return nil, func() {}, err
	}
	return repositories.NewExportRepository(db), func() { closeDB(r.logger, db) }, nil
}

// newCatalog builds a deck catalog that records downloads in the history database when one is configured.
func (r *Runner) newCatalog() (*catalog.Catalog, func(), error) {
	repo, closeFn, err := r.openHistory()
	if err != nil {
		return nil, closeFn, err
	}

	opts := catalog.Opts{Logger: shared.WithLogger(r.logger, "component", "catalog")}
	if repo != nil {
		opts.Recorder = repo
	}
	return catalog.New(r.client, opts), closeFn, nil
}

func closeDB(logger *log.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
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
