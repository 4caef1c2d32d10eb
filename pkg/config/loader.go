package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/logging"
	"github.com/timbertson/daglink/pkg/types"
)

// Directive field names
const (
	fieldPath     = "path"
	fieldURI      = "uri"
	fieldExtract  = "extract"
	fieldTags     = "tags"
	fieldOptional = "optional"
)

// Meta field names
const (
	metaAliases = "aliases"
	metaBaseDir = "basedir"
	metaHosts   = "hosts"
)

// LoadFile reads and validates the link configuration at path
func LoadFile(fsys types.FS, path string) (*types.Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config %s", path)
	}

	raw, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	cfg.File = path

	logger := logging.GetLogger("config")
	logger.Debug().
		Str("file", path).
		Int("paths", len(cfg.Entries)).
		Int("aliases", len(cfg.Meta.Aliases)).
		Msg("Loaded config")
	return cfg, nil
}

func decode(path string, data []byte) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config %s", path)
	}
	return raw, nil
}

// Parse validates decoded configuration data. Top-level keys starting with
// types.ReservedPrefix are ignored, as are the meta keys.
func Parse(raw map[string]interface{}) (*types.Config, error) {
	cfg := &types.Config{}

	meta, err := parseMeta(raw[types.MetaKey])
	if err != nil {
		return nil, err
	}
	cfg.Meta = meta

	if legacy, ok := raw[types.LegacyAliasKey]; ok {
		aliases, err := stringMap(types.LegacyAliasKey, legacy)
		if err != nil {
			return nil, err
		}
		for k, v := range aliases {
			if _, exists := cfg.Meta.Aliases[k]; !exists {
				cfg.Meta.Aliases[k] = v
			}
		}
	}

	for key, value := range raw {
		if key == types.MetaKey || key == types.LegacyAliasKey || strings.HasPrefix(key, types.ReservedPrefix) {
			continue
		}
		directives, err := parseEntry(key, value)
		if err != nil {
			return nil, err
		}
		cfg.Entries = append(cfg.Entries, types.Entry{Path: key, Directives: directives})
	}

	cfg.SortEntries()
	return cfg, nil
}

func parseEntry(path string, value interface{}) ([]types.Directive, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		d, err := parseDirective(path, v)
		if err != nil {
			return nil, err
		}
		return []types.Directive{d}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, invalid(path, "empty directive list")
		}
		out := make([]types.Directive, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, invalid(path, "directive %d is a %T, not a mapping", i, item)
			}
			d, err := parseDirective(path, m)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	default:
		return nil, invalid(path, "expected a directive or a list of directives, got %T", value)
	}
}

func parseDirective(path string, m map[string]interface{}) (types.Directive, error) {
	var d types.Directive

	local, hasLocal, err := optionalString(path, fieldPath, m)
	if err != nil {
		return d, err
	}
	uri, hasURI, err := optionalString(path, fieldURI, m)
	if err != nil {
		return d, err
	}
	extract, hasExtract, err := optionalString(path, fieldExtract, m)
	if err != nil {
		return d, err
	}

	switch {
	case hasLocal && hasURI:
		return d, invalid(path, "directive has both %q and %q", fieldPath, fieldURI)
	case hasLocal && hasExtract:
		return d, invalid(path, "%q only applies to %q directives", fieldExtract, fieldURI)
	case hasLocal:
		d.Source = types.LocalPath{Path: local}
	case hasURI:
		d.Source = types.RemoteRef{URI: uri, Extract: strings.Trim(extract, "/")}
	default:
		return d, invalid(path, "directive needs either %q or %q", fieldPath, fieldURI)
	}

	d.Tags, err = parseTags(path, m[fieldTags])
	if err != nil {
		return d, err
	}

	if v, ok := m[fieldOptional]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return d, invalid(path, "%q must be a boolean, got %T", fieldOptional, v)
		}
		d.Optional = b
	}

	var unknown []string
	for k := range m {
		switch k {
		case fieldPath, fieldURI, fieldExtract, fieldTags, fieldOptional:
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		logger := logging.GetLogger("config")
		logger.Warn().Str("path", path).Strs("keys", unknown).Msg("Ignoring unknown directive keys")
	}
	return d, nil
}

func parseTags(path string, v interface{}) (types.TagSet, error) {
	switch t := v.(type) {
	case nil:
		return types.NewTagSet(), nil
	case string:
		return types.ParseTags(t), nil
	case []interface{}:
		tags := types.NewTagSet()
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(path, "tags must be strings, got %T", item)
			}
			tags.Union(types.ParseTags(s))
		}
		return tags, nil
	default:
		return nil, invalid(path, "tags must be a string or a list, got %T", v)
	}
}

func parseMeta(v interface{}) (types.Meta, error) {
	meta := types.Meta{
		Aliases: map[string]string{},
		Hosts:   map[string]types.TagSet{},
	}
	if v == nil {
		return meta, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return meta, invalid(types.MetaKey, "expected a mapping, got %T", v)
	}

	if aliases, ok := m[metaAliases]; ok {
		parsed, err := stringMap(types.MetaKey+"."+metaAliases, aliases)
		if err != nil {
			return meta, err
		}
		meta.Aliases = parsed
	}

	if base, ok := m[metaBaseDir]; ok && base != nil {
		s, ok := base.(string)
		if !ok {
			return meta, invalid(types.MetaKey+"."+metaBaseDir, "expected a string, got %T", base)
		}
		meta.BaseDir = s
	}

	if hosts, ok := m[metaHosts]; ok && hosts != nil {
		hm, ok := hosts.(map[string]interface{})
		if !ok {
			return meta, invalid(types.MetaKey+"."+metaHosts, "expected a mapping, got %T", hosts)
		}
		for pattern, tags := range hm {
			parsed, err := parseTags(types.MetaKey+"."+metaHosts+"."+pattern, tags)
			if err != nil {
				return meta, err
			}
			meta.Hosts[pattern] = parsed
		}
	}
	return meta, nil
}

func stringMap(where string, v interface{}) (map[string]string, error) {
	out := map[string]string{}
	if v == nil {
		return out, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, invalid(where, "expected a mapping, got %T", v)
	}
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			return nil, invalid(where, "value for %q must be a string, got %T", k, val)
		}
		out[k] = s
	}
	return out, nil
}

func optionalString(path, field string, m map[string]interface{}) (string, bool, error) {
	v, ok := m[field]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, invalid(path, "%q must be a string, got %T", field, v)
	}
	if s == "" {
		return "", false, nil
	}
	return s, true, nil
}

func invalid(where, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrConfigValid, "%s: %s", where, fmt.Sprintf(format, args...)).
		WithDetail("path", where)
}
