package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taxlab/ktax/internal/domain"
)

// InputParser handles parsing of request documents
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// batchDocument is the on-disk shape of a multi-request file
type batchDocument struct {
	Requests []domain.Request `yaml:"requests" json:"requests"`
}

// LoadRequest loads a single request from a YAML or JSON file
func (ip *InputParser) LoadRequest(filename string) (*domain.Request, error) {
	reqs, err := ip.LoadRequests(filename)
	if err != nil {
		return nil, err
	}
	if len(reqs) != 1 {
		return nil, fmt.Errorf("%s holds %d requests, expected one", filename, len(reqs))
	}
	return &reqs[0], nil
}

// LoadRequests loads either a batch document ("requests:" list) or a single
// request. JSON is selected by the .json extension; anything else is YAML.
func (ip *InputParser) LoadRequests(filename string) ([]domain.Request, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	reqs, err := ip.Parse(data, isJSON(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return reqs, nil
}

// Parse decodes and validates the requests in a document
func (ip *InputParser) Parse(data []byte, asJSON bool) ([]domain.Request, error) {
	unmarshal := yaml.Unmarshal
	format := "YAML"
	if asJSON {
		unmarshal = json.Unmarshal
		format = "JSON"
	}

	var doc batchDocument
	if err := unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", format, err)
	}
	reqs := doc.Requests
	if len(reqs) == 0 {
		var single domain.Request
		if err := unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", format, err)
		}
		if single.Category == "" {
			return nil, fmt.Errorf("no requests provided")
		}
		reqs = []domain.Request{single}
	}

	for i := range reqs {
		if err := ip.ValidateRequest(&reqs[i]); err != nil {
			return nil, fmt.Errorf("request %d validation failed: %w", i, err)
		}
	}
	return reqs, nil
}

// ValidateRequest normalizes the category name and checks that exactly the
// matching payload is present. Field-level rules are applied by the engine.
func (ip *InputParser) ValidateRequest(req *domain.Request) error {
	category, err := domain.ParseCategory(string(req.Category))
	if err != nil {
		return err
	}
	req.Category = category
	if _, err := req.Payload(); err != nil {
		return err
	}
	return nil
}

func isJSON(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}
