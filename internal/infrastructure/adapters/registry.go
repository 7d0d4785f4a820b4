package adapters

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/logger"
)

// ServiceConfig is one entry of the services.yaml registry file.
type ServiceConfig struct {
	Name           string `yaml:"name"`
	Kind           string `yaml:"kind"`
	BaseURL        string `yaml:"base_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type registryFile struct {
	Services []ServiceConfig `yaml:"services"`
}

// LoadRegistry reads the services.yaml registry and builds the adapter set.
// Unknown kinds fail loudly: a typo must not silently drop a service from
// reconciliation.
func LoadRegistry(path string, log logger.Interface) (*sync.StaticRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service registry %s: %w", path, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse service registry %s: %w", path, err)
	}
	if len(file.Services) == 0 {
		return nil, fmt.Errorf("service registry %s configures no services", path)
	}

	seen := make(map[string]bool, len(file.Services))
	adapters := make([]sync.Adapter, 0, len(file.Services))
	for _, svc := range file.Services {
		if svc.Name == "" {
			return nil, fmt.Errorf("service registry entry without a name")
		}
		if seen[svc.Name] {
			return nil, fmt.Errorf("duplicate service name %q in registry", svc.Name)
		}
		seen[svc.Name] = true

		adapter, err := buildAdapter(svc, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}

	registry := sync.NewStaticRegistry(adapters...)
	log.Infow("service registry loaded", "services", registry.Names())
	return registry, nil
}

func buildAdapter(svc ServiceConfig, log logger.Interface) (sync.Adapter, error) {
	timeout := time.Duration(svc.TimeoutSeconds) * time.Second

	switch svc.Kind {
	case "chat":
		return NewChatAdapter(svc.Name, svc.BaseURL, svc.APIToken, timeout, log), nil
	case "forum":
		return NewForumAdapter(svc.Name, svc.BaseURL, svc.APIToken, timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown service kind %q for service %q", svc.Kind, svc.Name)
	}
}
