package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/iamankun/studio-sub000/internal/isrc"
	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/repositories"
	"github.com/iamankun/studio-sub000/internal/services"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/iamankun/studio-sub000/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the Runner's logger, e.g. to redirect logs away from the terminal while the TUI runs.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, userCommand, submissionCommand, reviewCommand, isrcCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// env bundles the per-invocation dependencies built over an open database.
type env struct {
	db      *sql.DB
	users   *repositories.UserRepository
	service *lifecycle.Service
	engine  *tasks.ReviewEngine
}

func (e *env) Close() error { return e.db.Close() }

// openEnv opens the configured database and wires the repositories,
// allocator, and lifecycle service the command actions operate through.
func (r *Runner) openEnv() (*env, error) {
	cfg := r.config

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	counters := repositories.NewCounterRepository(db)
	alloc, err := isrc.NewAllocator(cfg.Label.CountryCode, cfg.Label.Registrant, counters)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid label registrant configuration: %w", err)
	}

	var notifier services.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.Notify.WebhookURL, r.httpClient)
	}

	stores := lifecycle.Stores{
		Submissions: repositories.NewSubmissionRepository(db),
		Tracks:      repositories.NewTrackRepository(db),
	}
	service := lifecycle.NewService(stores, alloc, lifecycle.ServiceOpts{
		Notifier: notifier,
		Logger:   r.logger,
	})

	return &env{
		db:      db,
		users:   repositories.NewUserRepository(db),
		service: service,
		engine:  tasks.NewReviewEngine(service),
	}, nil
}

// actor resolves the acting user from the --token flag or the SUB000_TOKEN
// environment variable.
func (r *Runner) actor(ctx context.Context, e *env, cmd *cli.Command) (*models.User, error) {
	token := cmd.String("token")
	if token == "" {
		token = os.Getenv("SUB000_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: provide --token or set SUB000_TOKEN", shared.ErrNotAuthenticated)
	}

	user, err := e.users.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token does not match any account", shared.ErrUnknownUser)
	}
	return user, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
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
