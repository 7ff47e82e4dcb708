package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/wintitle/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML config files.
//
// Nested mappings are flattened by joining keys with hyphens, so both
// of these set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Keys may use underscores in place of hyphens. Numbers are passed to
// kong as their decimal text and sequences as lists of strings. A file
// that fails to parse is ignored with a warning, leaving the flags at
// their defaults.
//
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any

		err = yaml.UnmarshalContext(ctx, data, &doc)
		if err != nil {
			log.WarnContext(ctx, "ignoring config file", slog.Any("error", err))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(strings.ToLower(k), "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(v)
	}
}

// scalar converts a decoded YAML value to a form kong can map.
func scalar(v any) any {
	switch x := v.(type) {
	case uint64:
		return strconv.FormatUint(x, 10)

	case int64:
		return strconv.FormatInt(x, 10)

	case int:
		return strconv.Itoa(x)

	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)

	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = fmt.Sprint(scalar(e))
		}

		return out

	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Command flags may also be set
// under the command's name, as in "eval-strict" or eval: {strict: ...}.
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if parent != nil && parent.Command != nil {
		if v, ok := c[parent.Command.Name+"-"+flag.Name]; ok {
			return v, nil
		}
	}

	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
