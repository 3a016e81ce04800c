package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Formats accepted by Load and Write.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// DefaultFileName is the config file looked up by Locate.
const DefaultFileName = "dashgrid.toml"

// FormatOf infers the format from a file extension. Unknown extensions are
// treated as TOML.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Load reads a config file over Default, fills defaults and validates.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, FormatOf(path))
}

// Parse decodes config data in the given format over Default.
func Parse(data []byte, format string) (Config, error) {
	c := Default()
	// Decoding into a populated slice would merge with the default
	// breakpoints; a file that lists breakpoints replaces them.
	c.Responsive.Breakpoints = nil

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	case FormatTOML, "":
		_, err = toml.Decode(string(data), &c)
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config format %q", format)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s config", format)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write encodes c in the given format.
func (c Config) Write(w io.Writer, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml config")
		}
		return enc.Close()
	case FormatTOML, "":
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode toml config")
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown config format %q", format)
}

// Marshal is Write into a byte slice.
func (c Config) Marshal(format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Locate returns the first config file found in the working directory or
// the user config directory, or "" when there is none.
func Locate() string {
	candidates := []string{DefaultFileName, "dashgrid.yaml", "dashgrid.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "dashgrid", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
