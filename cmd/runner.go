package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/SyedSaifuddin045/spolist/internal/auth"
	"github.com/SyedSaifuddin045/spolist/internal/server"
	"github.com/SyedSaifuddin045/spolist/internal/services"
	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
	"github.com/SyedSaifuddin045/spolist/internal/tasks"
)

// loginTimeout bounds the wait for the user to finish the consent page.
const loginTimeout = 5 * time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	slot        storage.Slot
	coordinator *auth.Coordinator
	gate        *auth.Gate
	spotify     services.Service
	downloader  *services.Downloader
	engine      *tasks.DownloadEngine
	history     *storage.SQLiteSlot
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Slot        storage.Slot
	Coordinator *auth.Coordinator
	Spotify     services.Service
	Downloader  *services.Downloader
	History     *storage.SQLiteSlot
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
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
	if opts.Slot == nil {
		opts.Slot = storage.NewMemorySlot()
	}
	if opts.Coordinator == nil {
		opts.Coordinator = auth.NewCoordinator(auth.CoordinatorOpts{
			Config: opts.Config.Credentials.Spotify,
			Slot:   opts.Slot,
			Logger: opts.Logger,
		})
	}

	gate := auth.NewGate(opts.Coordinator)

	if opts.Spotify == nil {
		opts.Spotify = services.NewSpotifyService(gate, "", opts.HTTPClient)
	}
	if opts.Downloader == nil {
		opts.Downloader = services.NewDownloader(opts.Config.Downloader.BaseURL, opts.HTTPClient)
	}

	var history tasks.HistoryRecorder
	if opts.History != nil {
		history = opts.History
	}
	engine := tasks.NewDownloadEngine(opts.Downloader, history)

	return &Runner{
		config:      opts.Config,
		slot:        opts.Slot,
		coordinator: opts.Coordinator,
		gate:        gate,
		spotify:     opts.Spotify,
		downloader:  opts.Downloader,
		engine:      engine,
		history:     opts.History,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, searchCommand, playlistCommand, downloadCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureSession drives the token lifecycle until the session is usable.
//
// When the coordinator redirects to the provider, it listens on the
// configured callback address for the returning code and completes the
// exchange. Safe to call from any command.
func (r *Runner) ensureSession(ctx context.Context) error {
	err := r.coordinator.Resolve(ctx, "")
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrDeferred) {
		return err
	}

	state, ok, stateErr := r.slot.Get(storage.KeyState)
	if stateErr != nil {
		return stateErr
	}
	if !ok {
		return fmt.Errorf("%w: no authorization attempt in flight", shared.ErrNotAuthenticated)
	}

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	r.logger.Info("waiting for authorization", "addr", addr)

	code, err := server.AwaitCode(ctx, addr, state, loginTimeout, server.RequestLogger(r.logger))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	return r.coordinator.Resolve(ctx, code)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
