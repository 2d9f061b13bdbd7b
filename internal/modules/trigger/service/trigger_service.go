package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"activitylog/internal/modules/trigger/domain"
	"activitylog/internal/modules/trigger/dto"
	triggerout "activitylog/internal/modules/trigger/port/out"
	"activitylog/internal/platform/logging"
)

// maxPollFailures consecutive failed polls retire a listener.
const maxPollFailures = 5

type TriggerService struct {
	store    triggerout.ManifestStore
	host     triggerout.Host
	dispatch triggerout.Dispatcher
	logger   zerolog.Logger
}

func NewTriggerService(store triggerout.ManifestStore, host triggerout.Host, dispatch triggerout.Dispatcher, logger zerolog.Logger) *TriggerService {
	return &TriggerService{store: store, host: host, dispatch: dispatch, logger: logger}
}

func (s *TriggerService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.PluginInfo{
			Name:         m.Name,
			Version:      m.Version,
			Enabled:      m.Enabled,
			Binary:       m.Binary,
			PollInterval: m.PollInterval.String(),
		})
	}
	return out, nil
}

func (s *TriggerService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		if _, err := os.Stat(m.Binary); err != nil {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.BinaryReachable = true
		if err := verifyChecksum(m.Binary, m.SHA256); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ChecksumValid = true
		if m.Enabled && s.host != nil {
			if err := s.checkLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Run launches every enabled listener and polls each on its own goroutine.
// A listener that fails to start is logged and skipped so the tracker keeps
// running without it.
func (s *TriggerService) Run(ctx context.Context) error {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range manifests {
		log := s.logger.With().Str(logging.KeyPlugin, m.Name).Logger()
		if !m.Enabled {
			log.Debug().Msg("trigger disabled")
			continue
		}
		listener, err := s.launch(ctx, m)
		if err != nil {
			log.Error().Err(err).Msg("trigger not started")
			continue
		}
		log.Info().Dur("poll_interval", m.PollInterval).Msg("trigger started")
		g.Go(func() error {
			defer listener.Close()
			s.poll(ctx, m, listener, log)
			return nil
		})
	}
	return g.Wait()
}

func (s *TriggerService) launch(ctx context.Context, m domain.Manifest) (triggerout.Listener, error) {
	if err := verifyChecksum(m.Binary, m.SHA256); err != nil {
		return nil, err
	}
	listener, err := s.host.Launch(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := listener.Configure(ctx, m.Settings); err != nil {
		listener.Close()
		return nil, fmt.Errorf("configure %s: %w", m.Name, err)
	}
	return listener, nil
}

func (s *TriggerService) poll(ctx context.Context, m domain.Manifest, listener triggerout.Listener, log zerolog.Logger) {
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("trigger stopped")
			return
		case <-ticker.C:
		}
		events, err := listener.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			log.Warn().Err(err).Int("failures", failures).Msg("trigger poll failed")
			if failures >= maxPollFailures {
				log.Error().Msg("trigger retired after repeated poll failures")
				return
			}
			continue
		}
		failures = 0
		for _, event := range events {
			if err := event.Validate(); err != nil {
				log.Warn().Err(err).Msg("trigger event dropped")
				continue
			}
			if err := s.dispatch.Dispatch(ctx, event); err != nil {
				log.Warn().Err(err).Str("action", string(event.Action)).Str(logging.KeyActivity, event.Name).Msg("trigger event rejected")
				continue
			}
			log.Debug().Str("action", string(event.Action)).Str(logging.KeyActivity, event.Name).Msg("trigger event applied")
		}
	}
}

func (s *TriggerService) checkLifecycle(ctx context.Context, m domain.Manifest) error {
	listener, err := s.host.Launch(ctx, m)
	if err != nil {
		return err
	}
	defer listener.Close()
	meta, err := listener.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	if meta.Name != m.Name {
		return fmt.Errorf("plugin reports name %q, manifest says %q", meta.Name, m.Name)
	}
	return nil
}

func (s *TriggerService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("plugin %q: %w", m.Name, err)
		}
		if _, ok := seen[m.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return manifests, nil
}

func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash plugin binary: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}
