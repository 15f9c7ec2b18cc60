package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dynipupdater/internal/firewall"
	"dynipupdater/internal/publicip"
	"dynipupdater/models"

	"github.com/rs/zerolog/log"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrAlreadyOpen   = errors.New("rules already opened")
)

// IPResolver returns the caller's public address as seen by endpoint.
type IPResolver interface {
	Resolve(ctx context.Context, endpoint string) (string, error)
}

// App ties the resolved public IP to the rule synchronizer and guards the
// close sequence so it runs at most once per process.
type App struct {
	config   models.Config
	resolver IPResolver
	api      firewall.IngressAPI

	locker       sync.Mutex
	synchronizer *firewall.Synchronizer
	openResults  []models.RuleChangeResult

	opened       atomic.Bool
	closeOnce    sync.Once
	closed       atomic.Bool
	closeResults []models.RuleChangeResult
	closeErr     error
}

func New(cfg models.Config, resolver IPResolver, api firewall.IngressAPI) *App {
	return &App{
		config:   cfg,
		resolver: resolver,
		api:      api,
	}
}

// Config returns the loaded configuration.
func (a *App) Config() models.Config {
	return a.config
}

// PublicIP returns the resolved address, or "" before resolution.
func (a *App) PublicIP() string {
	a.locker.Lock()
	defer a.locker.Unlock()
	if a.synchronizer == nil {
		return ""
	}
	return a.synchronizer.PublicIP()
}

func (a *App) OpenResults() []models.RuleChangeResult {
	a.locker.Lock()
	defer a.locker.Unlock()
	return append([]models.RuleChangeResult(nil), a.openResults...)
}

func (a *App) CloseResults() []models.RuleChangeResult {
	a.locker.Lock()
	defer a.locker.Unlock()
	return append([]models.RuleChangeResult(nil), a.closeResults...)
}

func (a *App) Closed() bool {
	return a.closed.Load()
}

// ResolvePublicIP resolves the public IP once; later calls reuse it.
func (a *App) ResolvePublicIP(ctx context.Context) (string, error) {
	a.locker.Lock()
	defer a.locker.Unlock()
	s, err := a.loadSynchronizer(ctx)
	if err != nil {
		return "", err
	}
	return s.PublicIP(), nil
}

func (a *App) loadSynchronizer(ctx context.Context) (*firewall.Synchronizer, error) {
	if a.synchronizer != nil {
		return a.synchronizer, nil
	}
	settings := a.config.Settings
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	ip, err := a.resolver.Resolve(ctx, settings.IPServer)
	if err != nil {
		if errors.Is(err, publicip.ErrUnsupportedEndpoint) {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return nil, fmt.Errorf("failed to resolve public ip: %w", err)
	}
	log.Info().Str("ip", ip).Msg("public ip resolved")

	a.synchronizer = firewall.New(a.api, settings.DeviceName, ip, settings.Rules)
	return a.synchronizer, nil
}

// Open resolves the public IP and opens every rule. Configuration and
// resolution failures are returned as errors; per-rule failures are only
// reported in the results.
func (a *App) Open(ctx context.Context) ([]models.RuleChangeResult, error) {
	if !a.opened.CompareAndSwap(false, true) {
		return nil, ErrAlreadyOpen
	}

	a.locker.Lock()
	s, err := a.loadSynchronizer(ctx)
	a.locker.Unlock()
	if err != nil {
		a.opened.Store(false)
		return nil, err
	}

	log.Info().Int("rules", len(s.Rules())).Msg("opening rules")
	results := s.ApplyAll(ctx)

	a.locker.Lock()
	a.openResults = results
	a.locker.Unlock()
	return results, nil
}

// Close revokes every rule. Only the first call talks to EC2; any later
// call, from any goroutine, waits for it and gets the same outcome.
func (a *App) Close(ctx context.Context) ([]models.RuleChangeResult, error) {
	// the revoke runs once, so a canceled trigger must not cut it short
	ctx = context.WithoutCancel(ctx)
	a.closeOnce.Do(func() {
		defer a.closed.Store(true)

		a.locker.Lock()
		s, err := a.loadSynchronizer(ctx)
		a.locker.Unlock()
		if err != nil {
			a.closeErr = err
			return
		}

		log.Info().Int("rules", len(s.Rules())).Msg("closing rules")
		results := s.RevokeAll(ctx)

		a.locker.Lock()
		a.closeResults = results
		a.locker.Unlock()
	})
	return a.CloseResults(), a.closeErr
}
