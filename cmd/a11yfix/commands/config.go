package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// filterConfig builds the filter configuration from the "filter" section of
// the config file, then applies command-line overrides bound under the same
// keys.
func filterConfig(v *viper.Viper) (*a11y.Config, error) {
	cfg := a11y.DefaultConfig()
	if v.GetBool("legacy") {
		cfg = a11y.PresetLegacy()
	}

	if err := v.UnmarshalKey("filter", cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if s := v.GetString("filter.tag_mode"); s != "" {
		cfg.TagMode = a11y.TagMode(s)
	}
	if s := v.GetString("filter.table_id_strategy"); s != "" {
		cfg.TableIDStrategy = a11y.TableIDStrategy(s)
	}
	if s := v.GetString("filter.relay_host"); s != "" {
		cfg.RelayHost = s
	}
	if v.GetBool("filter.pretty") {
		cfg.Pretty = true
	}
	if v.GetBool("debug") {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// byteSize parses a human-readable size such as "10MB". "0" means no limit.
func byteSize(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}
