package out

import (
	"context"

	"activitylog/internal/modules/trigger/domain"
	triggerout "activitylog/internal/modules/trigger/port/out"
	"activitylog/internal/platform/config"
)

// ConfigManifestStore serves the plugins section of config.yaml. Paths and
// poll intervals are already resolved by config.Load.
type ConfigManifestStore struct {
	plugins []config.PluginConfig
}

func NewConfigManifestStore(plugins []config.PluginConfig) triggerout.ManifestStore {
	return &ConfigManifestStore{plugins: plugins}
}

func (s *ConfigManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	out := make([]domain.Manifest, 0, len(s.plugins))
	for _, p := range s.plugins {
		settings := make(map[string]string, len(p.Settings))
		for k, v := range p.Settings {
			settings[k] = v
		}
		out = append(out, domain.Manifest{
			Name:         p.Name,
			Version:      p.Version,
			Binary:       p.Binary,
			SHA256:       p.SHA256,
			Enabled:      p.Enabled,
			PollInterval: p.PollInterval,
			Settings:     settings,
		})
	}
	return out, nil
}
