package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/formatter"
	"github.com/desertthunder/songshift/internal/matcher"
	"github.com/desertthunder/songshift/internal/repositories"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// spotifyClient is everything the commands need from the Spotify account.
type spotifyClient interface {
	services.LibrarySource
	services.LibraryTarget
	services.LibraryCleaner
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services and the database are created on first use so commands that do not need them
// work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    spotifyClient
	session    *services.SpotifyService
	youtube    services.LibrarySource
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    spotifyClient
	YouTube    services.LibrarySource
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		youtube:    opts.YouTube,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, exportCommand, importCommand, clearCommand, matchCommand, historyCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --env and --verbose.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return ctx, err
	}
	if err := shared.ApplyEnv(config, cmd.String("env")); err != nil {
		return ctx, err
	}
	if err := config.ResolvePaths(); err != nil {
		return ctx, err
	}
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	r.logger.Debug("configuration loaded", "path", path, "database", config.Database.Path)
	return ctx, nil
}

// After persists a refreshed Spotify token and closes the database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	if r.session != nil {
		if token, err := r.session.Token(); err == nil && token.AccessToken != r.config.Credentials.Spotify.AccessToken {
			r.logger.Debug("saving refreshed spotify token")
			errs = append(errs, r.saveTokens(token))
		}
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	return errors.Join(errs...)
}

// saveTokens stores token on the config and writes the config file when one is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) newSpotifyService() (*services.SpotifyService, error) {
	m := r.config.Matcher
	svc, err := services.NewSpotifyService(
		r.config.Credentials.Spotify,
		services.WithRateLimit(m.RequestsPerSecond),
		services.WithSearchLimit(m.SearchLimit),
		services.WithServiceLogger(shared.WithLogger(r.logger, "service", "spotify")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	return svc, nil
}

// spotifyService returns the authenticated Spotify account, building it from the cached token
// and checking it before any command work starts.
func (r *Runner) spotifyService(ctx context.Context) (spotifyClient, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	svc, err := r.newSpotifyService()
	if err != nil {
		return nil, err
	}
	if err := svc.Authenticate(ctx, r.config.Credentials.Spotify.Token()); err != nil {
		return nil, err
	}
	if err := svc.Verify(ctx); err != nil {
		return nil, err
	}

	r.session = svc
	r.spotify = svc
	return svc, nil
}

func (r *Runner) youtubeService() services.LibrarySource {
	if r.youtube == nil {
		r.youtube = services.NewYouTubeService(r.config.Credentials.YouTube)
	}
	return r.youtube
}

// source picks the export source by name.
func (r *Runner) source(ctx context.Context, name string) (services.LibrarySource, error) {
	switch name {
	case "", "spotify":
		return r.spotifyService(ctx)
	case "youtube", "ytmusic":
		return r.youtubeService(), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q (spotify or youtube)", shared.ErrInvalidArgument, name)
	}
}

// database opens the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// mappingStore returns the mapping persistence selected by kind.
func (r *Runner) mappingStore(kind, path string) (tasks.MappingStore, error) {
	switch kind {
	case shared.MappingStoreCSV:
		return formatter.NewCSVMappingStore(path), nil
	case shared.MappingStoreSQLite:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		return repositories.NewMappingRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown mapping store %q (csv or sqlite)", shared.ErrInvalidArgument, kind)
	}
}

// resolver builds a [matcher.Resolver] over searcher using the [matcher] config section.
func (r *Runner) resolver(searcher matcher.Searcher) (*matcher.Resolver, error) {
	m := r.config.Matcher
	metric, err := matcher.MetricByName(m.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	opts := []matcher.ScorerOption{matcher.WithMetric(metric)}
	if m.ArtistThreshold > 0 {
		opts = append(opts, matcher.WithArtistThreshold(m.ArtistThreshold))
	}
	if m.RemixToken != "" {
		opts = append(opts, matcher.WithRemixToken(m.RemixToken))
	}

	return matcher.NewResolver(
		searcher,
		matcher.WithScorer(matcher.NewScorer(opts...)),
		matcher.WithLogger(shared.WithLogger(r.logger, "component", "matcher")),
	), nil
}

// stringOr returns the flag value when set on the command line and fallback otherwise.
func stringOr(cmd *cli.Command, name, fallback string) string {
	if cmd.IsSet(name) {
		return cmd.String(name)
	}
	return fallback
}

// printProgress writes updates until progress is closed, then closes done.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}, render func(tasks.ProgressUpdate) string) {
	defer close(done)
	for update := range progress {
		if line := render(update); line != "" {
			r.writePlain("%s\n", line)
		}
	}
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
