package output

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter emits the result document. A single successful entry is
// emitted as the bare result object.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(entries []Entry) ([]byte, error) {
	data, err := json.MarshalIndent(document(entries), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter emits the same document as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document(entries)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func document(entries []Entry) any {
	if len(entries) == 1 && entries[0].Result != nil {
		return entries[0].Result
	}
	return entries
}
