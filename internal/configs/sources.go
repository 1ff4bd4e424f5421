package configs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// SourceConfig - адреса одной площадки
type SourceConfig struct {
	Enabled        bool     `yaml:"enabled"`
	SearchURL      string   `yaml:"search_url"`
	BaseURL        string   `yaml:"base_url"`
	DetailURL      string   `yaml:"detail_url"`
	AllowedDomains []string `yaml:"allowed_domains"`
}

func (c SourceConfig) Endpoint() sourceutil.Endpoint {
	return sourceutil.Endpoint{
		SearchURL: c.SearchURL,
		BaseURL:   c.BaseURL,
		DetailURL: c.DetailURL,
	}
}

// SourcesConfig - содержимое файла источников
type SourcesConfig struct {
	Sources map[string]SourceConfig `yaml:"sources"`
}

// LoadSources читает YAML с адресами площадок и проверяет имена источников и шаблоны адресов
func LoadSources(path string) (*SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file %s: %w", path, err)
	}
	return ParseSources(data)
}

func ParseSources(data []byte) (*SourcesConfig, error) {
	cfg := &SourcesConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	normalized := make(map[string]SourceConfig, len(cfg.Sources))
	for name, sc := range cfg.Sources {
		src, err := domain.ParseSource(name)
		if err != nil {
			return nil, fmt.Errorf("sources file: %w", err)
		}
		if sc.Enabled && !strings.Contains(sc.SearchURL, "{page}") {
			return nil, fmt.Errorf("sources file: %s search_url must contain {page}", src)
		}
		normalized[src.String()] = sc
	}
	cfg.Sources = normalized
	return cfg, nil
}

// Enabled - включенные источники в фиксированном порядке
func (c *SourcesConfig) Enabled() []domain.Source {
	var enabled []domain.Source
	for _, src := range domain.AllSources {
		if sc, ok := c.Sources[src.String()]; ok && sc.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

func (c *SourcesConfig) Get(src domain.Source) (SourceConfig, bool) {
	sc, ok := c.Sources[src.String()]
	return sc, ok && sc.Enabled
}

// AllowedDomains - объединение доменов включенных источников для HTTP-транспорта
func (c *SourcesConfig) AllowedDomains() []string {
	seen := make(map[string]struct{})
	var domains []string
	for _, src := range c.Enabled() {
		for _, d := range c.Sources[src.String()].AllowedDomains {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			domains = append(domains, d)
		}
	}
	return domains
}
