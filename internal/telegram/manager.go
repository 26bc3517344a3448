package telegram

import (
	"context"
	"sync"

	"github.com/celestix/gotgproto"

	"github.com/blockedby/episode-relay/internal/config"
	"github.com/blockedby/episode-relay/internal/logger"
)

// Status represents the Telegram client status.
type Status string

// Status constants define the possible states of the Telegram client.
const (
	StatusInitializing Status = "INITIALIZING"
	StatusReady        Status = "READY"
	StatusError        Status = "ERROR"
)

// ClientFactory is a function that creates a telegram client.
type ClientFactory func(ctx context.Context, cfg *config.Config) (*gotgproto.Client, error)

// Manager handles the bot client lifecycle.
type Manager struct {
	client *gotgproto.Client
	cfg    *config.Config
	log    *logger.Logger

	status  Status
	lastErr error
	mu      sync.RWMutex

	clientFactory ClientFactory
}

// NewManager creates a new Telegram Manager.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:           cfg,
		log:           logger.Get().Component("telegram"),
		status:        StatusInitializing,
		clientFactory: NewBotClient,
	}
}

// SetClientFactory allows overriding the client creation logic (e.g. for testing).
func (m *Manager) SetClientFactory(f ClientFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientFactory = f
}

// GetStatus returns the current Telegram client status.
func (m *Manager) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// LastError returns the error that put the manager into StatusError, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// GetClient returns the underlying Telegram client.
func (m *Manager) GetClient() *gotgproto.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Init logs the bot in. A bot token login needs no interactive step, so a failure
// here is fatal for the caller.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	m.status = StatusInitializing
	factory := m.clientFactory
	m.mu.Unlock()

	client, err := factory(ctx, m.cfg)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to start bot client")
		m.mu.Lock()
		m.status = StatusError
		m.lastErr = err
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.client = client
	m.status = StatusReady
	m.lastErr = nil
	m.mu.Unlock()

	if client != nil && client.Self != nil {
		m.log.Info().Str("username", client.Self.Username).Int64("bot_id", client.Self.ID).Msg("bot client is ready")
	} else {
		m.log.Info().Msg("bot client is ready")
	}
	return nil
}

// Stop stops the Telegram client.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		m.client.Stop()
	}
}
