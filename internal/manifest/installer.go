package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// KeyVariant selects the hook variant inside a values file. It is not an
// installer value.
const KeyVariant = "variant"

// Installer holds the values of an installer value file. It implements
// hook.Values.
type Installer struct {
	values map[string]string
}

// Value returns the value for key, or "" if unset.
func (i *Installer) Value(key string) string {
	return i.values[key]
}

// Variant returns the requested hook variant name, possibly empty.
func (i *Installer) Variant() string {
	return i.values[KeyVariant]
}

// Len returns the number of values in the file.
func (i *Installer) Len() int {
	return len(i.values)
}

// Load reads, validates and decodes an installer value file.
func Load(path string) (*Installer, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates and decodes installer values from YAML data.
func Parse(data []byte) (*Installer, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidError{Issues: result.Issues}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing installer values: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[k] = scalarString(v)
	}
	return &Installer{values: values}, nil
}

// InvalidError reports schema violations in an installer value file.
type InvalidError struct {
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		if issue.Path == "" {
			parts[i] = issue.Message
			continue
		}
		parts[i] = issue.Path + ": " + issue.Message
	}
	return "invalid installer values: " + strings.Join(parts, "; ")
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
