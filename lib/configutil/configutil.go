// Package configutil loads json5 configuration with an optional
// <name>.local.<ext> overlay next to the base file, so credentials and
// machine-specific values stay out of the committed config.
package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func localPath(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
}

// ReadConfig reads <name> and merges <base>.local.<ext> over it when
// present, local values win. When neither file exists it returns
// os.ErrNotExist so callers can distinguish "unconfigured" from a
// broken file.
func ReadConfig[T any](name string) (T, error) {
	var out T

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		err = json5.Unmarshal(base, &out)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
	}

	overlay := localPath(name)
	local, err := os.ReadFile(overlay)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		err = json5.Unmarshal(local, &override)
		if err != nil {
			return out, fmt.Errorf("%s: %w", overlay, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merged local config overrides", "path", overlay)
	}

	if len(base) == 0 && len(local) == 0 {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively walks from the working directory toward the
// filesystem root and reads the first <name> it finds, so commands can
// run from any subdirectory of the project.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
