package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders values as YAML. Keys follow the JSON field names so
// both formats describe a response the same way.
type YAMLFormatter struct{}

// Format renders value as YAML.
func (f *YAMLFormatter) Format(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", fmt.Errorf("convert to yaml: %w", err)
	}
	clearStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// clearStyle drops the flow style yaml.v3 keeps from the JSON input.
func clearStyle(node *yaml.Node) {
	if node.Style == yaml.FlowStyle {
		node.Style = 0
	}
	if node.Kind == yaml.ScalarNode && node.Style == yaml.DoubleQuotedStyle {
		node.Style = 0
	}
	for _, child := range node.Content {
		clearStyle(child)
	}
}
