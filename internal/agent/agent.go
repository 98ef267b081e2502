package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/mwantia/pastebox/internal/capture"
	"github.com/mwantia/pastebox/internal/command"
	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/internal/shell"
	"github.com/mwantia/pastebox/pkg/db/migrations"
	"github.com/mwantia/pastebox/pkg/db/store"
	"github.com/mwantia/pastebox/pkg/log"
)

type PasteBoxAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store   *store.SQLiteStore
	command *command.Service
	watcher *capture.Watcher
	shell   *shell.Shell
}

func NewAgent(cfg *config.BaseServerConfig) *PasteBoxAgent {
	return &PasteBoxAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("pastebox", cfg.Log),
	}
}

func (pba *PasteBoxAgent) setupStore(ctx context.Context) error {
	pba.log.Debug("Opening paste store at '%s'...", pba.cfg.Store.Path)

	s, err := store.Open(ctx, store.ConfigFromServer(pba.cfg.Store, pba.log.Named("store")))
	if err != nil {
		var merr *migrations.MigrationError
		if errors.As(err, &merr) {
			return fmt.Errorf("refusing to start with a partially migrated store: %w", err)
		}
		return fmt.Errorf("failed to open paste store: %w", err)
	}

	pba.store = s
	return nil
}

func (pba *PasteBoxAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	pba.command = command.NewService(pba.store, command.ConfigFromServer(pba.cfg))
	pba.watcher = capture.NewWatcher(pba.command, pba.cfg.Capture, nil)
	pba.shell = shell.NewShell(pba.cfg.Shell, pba.notify(ctx))

	pba.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](pba.sc,
		container.With[log.LoggerService](),
		container.WithInstance(pba.log)))

	pba.log.Debug("Registering 'PasteStore'...")
	errs.Add(container.Register[store.SQLiteStore](pba.sc,
		container.With[store.PasteStore](),
		container.WithInstance(pba.store)))

	pba.log.Debug("Registering 'CommandService'...")
	errs.Add(container.Register[command.Service](pba.sc,
		container.WithInstance(pba.command)))

	if err := errs.Errors(); err != nil {
		return err
	}

	ltp := log.NewLoggerTagProcessor()
	for _, target := range []any{pba.command, pba.watcher, pba.shell} {
		if err := ltp.Inject(ctx, pba.sc, target); err != nil {
			return fmt.Errorf("failed to inject logger: %w", err)
		}
	}

	return nil
}

// notify reacts to window notifications of the shell.
func (pba *PasteBoxAgent) notify(ctx context.Context) shell.Notifier {
	return func(n shell.Notification) {
		switch n {
		case shell.WindowOpened:
			pastes, err := pba.command.Recall(ctx, "", store.ListOptions{Limit: pba.cfg.Store.PageSize})
			if err != nil {
				pba.log.Warn("Failed to recall pastes: %v", err)
				return
			}
			pba.log.Info("Recall window opened with %d recent pastes", len(pastes))
		case shell.WindowClosed:
			pba.log.Info("Recall window closed")
		}
	}
}

func (pba *PasteBoxAgent) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pba.mutex.Lock()

	if err := pba.setupStore(ctx); err != nil {
		pba.mutex.Unlock()
		return err
	}

	if err := pba.setupServices(ctx); err != nil {
		pba.mutex.Unlock()
		pba.store.Close()
		return err
	}

	if pba.cfg.Capture.Enabled {
		pba.wait.Add(1)
		go func() {
			defer pba.wait.Done()
			if err := pba.watcher.Run(ctx); err != nil {
				pba.log.Error("Clipboard watcher stopped: %v", err)
			}
		}()
	}

	pba.mutex.Unlock()

	if err := pba.shell.Run(ctx, shell.SignalEvents(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		pba.log.Warn("Shell stopped: %v", err)
	}
	cancel()

	timeout, err := time.ParseDuration(pba.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := pba.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	pba.wait.Wait()

	if err := pba.store.Close(); err != nil {
		return fmt.Errorf("failed to close paste store: %w", err)
	}

	pba.log.Info("Shutdown complete")
	return nil
}
