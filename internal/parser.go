package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FormatAuto asks ParseFile to detect the document shape
const FormatAuto = "auto"

// Parser parses one exported document into a dataset. The slot is assigned by the caller.
type Parser interface {
	Parse(data []byte) (Dataset, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(data []byte) (Dataset, error)

func (f ParserFunc) Parse(data []byte) (Dataset, error) {
	return f(data)
}

// parsers is the registry of available parsers
var parsers = map[string]Parser{}

// detectors recognise the top-level shape of each registered format
var detectors = map[string]func(top map[string]json.RawMessage) bool{}

// RegisterParser registers a parser with the given name. detect may be nil
// for formats that are only used when named explicitly.
func RegisterParser(name string, p Parser, detect func(top map[string]json.RawMessage) bool) {
	parsers[name] = p
	if detect != nil {
		detectors[name] = detect
	}
}

// GetParser returns the parser for the given format
func GetParser(format string) (Parser, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (available: %v)", format, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns the registered format names, sorted
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "flat-json:data.json" → ("flat-json", "data.json")
// Example: "data.json" → ("", "data.json")
// Example: "C:\path\file.json" → ("", "C:\path\file.json") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownParser(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// ParseImportArg parses "contract:line=[format:]path" into its slot, format and path.
// The format is empty when the path carries no known prefix.
func ParseImportArg(arg string) (slot Slot, format, path string, err error) {
	slotStr, fileArg, ok := strings.Cut(arg, "=")
	if !ok || fileArg == "" {
		return Slot{}, "", "", fmt.Errorf("invalid import %q: expected contract:line=[format:]path", arg)
	}
	slot, err = ParseSlot(slotStr)
	if err != nil {
		return Slot{}, "", "", err
	}
	format, path = ParseFileArg(fileArg)
	return slot, format, path, nil
}

// DetectFormat returns the name of the format whose shape matches the document
func DetectFormat(data []byte) (string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return "", fmt.Errorf("%w: not a JSON object: %v", ErrSchemaMismatch, err)
	}
	names := make([]string, 0, len(detectors))
	for name := range detectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if detectors[name](top) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: document matches none of %v", ErrSchemaMismatch, names)
}

// Parse decodes data with the named format, detecting it when format is empty or "auto"
func Parse(data []byte, format string) (Dataset, error) {
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(data)
		if err != nil {
			return Dataset{}, err
		}
		format = detected
	}
	p, err := GetParser(format)
	if err != nil {
		return Dataset{}, err
	}
	ds, err := p.Parse(data)
	if err != nil {
		return Dataset{}, err
	}
	ds.Format = format
	for _, req := range ds.Requirements {
		if err := req.Validate(); err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

// ParseFile reads and parses a dataset file
func ParseFile(path, format string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading file: %w", err)
	}
	ds, err := Parse(data, format)
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ds, nil
}

// hasKeys reports whether every key is present in the top-level object
func hasKeys(top map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := top[k]; !ok {
			return false
		}
	}
	return true
}

func decodeStrict(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}
