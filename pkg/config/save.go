package config

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Save validates c and writes it to path as YAML. The file is replaced
// atomically so a running Watch sees one complete write.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	path = ExpandHome(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "create config directory").WithContext("path", dir)
	}
	tmp, err := os.CreateTemp(dir, ".lattice-*.yaml")
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "create temp config").WithContext("path", dir)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "write config").WithContext("path", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "write config").WithContext("path", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "replace config").WithContext("path", path)
	}
	return nil
}

// Marshal renders c as a YAML document that Load reads back unchanged.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c.document())
	if err != nil {
		return nil, lerrors.Wrap(err, lerrors.ErrCodeConfigParse, "encode config")
	}
	return data, nil
}

// document renders c with durations as strings; yaml.v3 only decodes
// durations written that way.
func (c *Config) document() *yaml.Node {
	doc := mapping(
		"ui", mapping(
			"frame_interval", scalar(c.UI.FrameInterval),
			"hover_focus", scalar(c.UI.HoverFocus),
			"scroll_off", scalar(c.UI.ScrollOff),
			"max_concurrent_ops", scalar(c.UI.MaxConcurrentOps),
			"theme", scalar(c.UI.Theme),
		),
		"keys", mapping(
			"help", scalar(c.Keys.Help),
			"launcher", scalar(c.Keys.Launcher),
			"overview", scalar(c.Keys.Overview),
			"quit", scalar(c.Keys.Quit),
		),
	)
	if len(c.Apps) > 0 {
		ids := make([]string, 0, len(c.Apps))
		for id := range c.Apps {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var kv []any
		for _, id := range ids {
			a := c.Apps[id]
			var fields []any
			if a.QuitPolicy != "" {
				fields = append(fields, "quit_policy", scalar(a.QuitPolicy))
			}
			if a.IdleTimeout > 0 {
				fields = append(fields, "idle_timeout", scalar(a.IdleTimeout))
			}
			if a.SuspendPolicy != "" {
				fields = append(fields, "suspend_policy", scalar(a.SuspendPolicy))
			}
			kv = append(kv, id, mapping(fields...))
		}
		doc.Content = append(doc.Content, key("apps"), mapping(kv...))
	}
	doc.Content = append(doc.Content,
		key("logging"), mapping(
			"path", scalar(c.Logging.Path),
			"level", scalar(c.Logging.Level),
		),
		key("bus"), mapping(
			"enabled", scalar(c.Bus.Enabled),
			"url", scalar(c.Bus.URL),
			"subject_prefix", scalar(c.Bus.SubjectPrefix),
			"rate_per_second", scalar(c.Bus.RatePerSecond),
		),
		key("telemetry"), mapping(
			"metrics_addr", scalar(c.Telemetry.MetricsAddr),
			"trace", scalar(c.Telemetry.Trace),
		),
	)
	return doc
}

func key(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}

// mapping builds a mapping node from alternating string keys and nodes.
func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, key(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func scalar(v any) *yaml.Node {
	if d, ok := v.(time.Duration); ok {
		v = d.String()
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return n
}
