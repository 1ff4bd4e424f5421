// Package contracts - JSON-схемы сообщений, которыми сервис обменивается через брокер
package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
)

//go:embed schemas
var schemaFS embed.FS

const (
	EventListingCreated = "ListingCreatedEvent"
	EventCrawlCompleted = "CrawlCompletedEvent"
	TaskCrawl           = "CrawlTask"

	Version1 = "1.0.0"
)

type schemaRef struct {
	name    string
	version string
	path    string
}

var knownSchemas = []schemaRef{
	{EventListingCreated, Version1, "schemas/events/listing-created/v1.json"},
	{EventCrawlCompleted, Version1, "schemas/events/crawl-completed/v1.json"},
	{TaskCrawl, Version1, "schemas/tasks/crawl-task/v1.json"},
}

// имя события в заголовке может прийти в другом регистре
var keyFolder = cases.Fold()

func schemaKey(name, version string) string {
	return keyFolder.String(name) + "/" + version
}

// Registry - скомпилированные схемы по ключу "имя/версия"
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

func NewRegistry() (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	registry := &Registry{schemas: make(map[string]*jsonschema.Schema, len(knownSchemas))}
	for _, ref := range knownSchemas {
		data, err := schemaFS.ReadFile(ref.path)
		if err != nil {
			return nil, fmt.Errorf("contracts: read %s: %w", ref.path, err)
		}
		url := "mem://" + ref.path
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("contracts: add %s: %w", ref.path, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("contracts: compile %s: %w", ref.path, err)
		}
		registry.schemas[schemaKey(ref.name, ref.version)] = schema
	}
	return registry, nil
}

// Validate проверяет тело сообщения по схеме
func (r *Registry) Validate(name, version string, body []byte) error {
	schema, ok := r.schemas[schemaKey(name, version)]
	if !ok {
		return fmt.Errorf("schema for '%s' version '%s' not found", name, version)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

var defaultRegistry = sync.OnceValues(NewRegistry)

// Default - общий реестр, схемы компилируются при первом обращении
func Default() (*Registry, error) {
	return defaultRegistry()
}
