package message

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed bundles/*.yaml
var embeddedBundles embed.FS

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// Bundle is the set of messages for one locale, keyed by message code.
type Bundle struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// DefaultBundles returns the bundles shipped with the service.
func DefaultBundles() ([]Bundle, error) {
	return LoadBundles(embeddedBundles, "bundles/*.yaml")
}

// LoadBundles parses every YAML file of fsys matching pattern, in file name order.
func LoadBundles(fsys fs.FS, pattern string) ([]Bundle, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("message: glob %s: %w", pattern, err)
	}
	sort.Strings(names)

	bundles := make([]Bundle, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("message: read %s: %w", name, err)
		}
		bundle, err := ParseBundle(data)
		if err != nil {
			return nil, fmt.Errorf("message: %s: %w", path.Base(name), err)
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// LoadBundleFile parses a single bundle from disk.
func LoadBundleFile(filename string) (Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Bundle{}, fmt.Errorf("message: read %s: %w", filename, err)
	}
	bundle, err := ParseBundle(data)
	if err != nil {
		return Bundle{}, fmt.Errorf("message: %s: %w", filename, err)
	}
	return bundle, nil
}

// ParseBundle decodes a YAML bundle and checks its placeholders.
func ParseBundle(data []byte) (Bundle, error) {
	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	if bundle.Locale == "" {
		return Bundle{}, ErrMissingLocale
	}
	for code, text := range bundle.Messages {
		if _, err := placeholderCount(text); err != nil {
			return Bundle{}, fmt.Errorf("code %q: %w", code, err)
		}
	}
	return bundle, nil
}

// placeholderCount returns the number of {n} placeholders in text. They must
// appear as {0}, {1}, ... in reading order, each exactly once.
func placeholderCount(text string) (int, error) {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n != i {
			return 0, fmt.Errorf("%w: %q", ErrPlaceholderOrder, text)
		}
	}
	return len(matches), nil
}
