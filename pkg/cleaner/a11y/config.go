// Package a11y provides an HTML content filter that repairs common
// accessibility defects in rendered page content.
//
// The filter titles embedded iframes, copies TablePress table descriptions
// into table summary attributes, drops empty headings and presentational
// markup (frameborder, <b>, <i>). It accepts fragments and returns fragments.
package a11y

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TableIDStrategy selects how a TablePress table id is read from the table's
// class attribute.
type TableIDStrategy string

const (
	// TableIDToken reads the id from the tablepress-id-<ID> class token.
	TableIDToken TableIDStrategy = "token"

	// TableIDOffset takes the class value from byte offset 25, the layout of
	// "tablepress tablepress-id-<ID>". Kept for output compatibility.
	TableIDOffset TableIDStrategy = "offset"
)

// TagMode selects how <b> and <i> are rewritten.
type TagMode string

const (
	// TagModeSerialized rewrites tags in the serialized HTML string.
	TagModeSerialized TagMode = "serialized"

	// TagModeTree renames element nodes before serialization.
	TagModeTree TagMode = "tree"
)

// DefaultRelayHost is the institutional video relay host matched by the
// default iframe rules.
const DefaultRelayHost = "boisestate.techsmithrelay.com"

// Config defines the options for the accessibility filter.
type Config struct {
	// === Passes ===

	// AnnotateIframes removes frameborder and adds a title to known embeds.
	AnnotateIframes bool `json:"annotate_iframes" mapstructure:"annotate_iframes"`

	// SummarizeTables copies TablePress descriptions into table summaries.
	SummarizeTables bool `json:"summarize_tables" mapstructure:"summarize_tables"`

	// RemoveEmptyHeadings drops h1-h6 elements without any text.
	RemoveEmptyHeadings bool `json:"remove_empty_headings" mapstructure:"remove_empty_headings"`

	// NormalizeTags turns <b> into <strong> and <i> into <em>.
	NormalizeTags bool `json:"normalize_tags" mapstructure:"normalize_tags"`

	// === Iframe rules ===

	// RelayHost replaces the host of the video relay rule.
	RelayHost string `json:"relay_host" mapstructure:"relay_host" validate:"omitempty,hostname_rfc1123"`

	// ExtraIframeRules are evaluated after the built-in table.
	ExtraIframeRules []IframeRule `json:"extra_iframe_rules" mapstructure:"extra_iframe_rules" validate:"dive"`

	// === Strategies ===

	// TableIDStrategy is "token" (default) or "offset".
	TableIDStrategy TableIDStrategy `json:"table_id_strategy" mapstructure:"table_id_strategy" validate:"omitempty,oneof=token offset"`

	// TagMode is "serialized" (default) or "tree".
	TagMode TagMode `json:"tag_mode" mapstructure:"tag_mode" validate:"omitempty,oneof=serialized tree"`

	// === Output ===

	// Pretty re-indents the output HTML.
	Pretty bool `json:"pretty" mapstructure:"pretty"`

	// Debug logs every mutation at debug level.
	Debug bool `json:"debug" mapstructure:"debug"`
}

// DefaultConfig returns a configuration with every pass enabled.
func DefaultConfig() *Config {
	return &Config{
		AnnotateIframes:     true,
		SummarizeTables:     true,
		RemoveEmptyHeadings: true,
		NormalizeTags:       true,
		RelayHost:           DefaultRelayHost,
		TableIDStrategy:     TableIDToken,
		TagMode:             TagModeSerialized,
	}
}

// PresetLegacy returns a configuration that reproduces the output of the
// original WordPress plugin: positional table ids and string tag rewriting.
func PresetLegacy() *Config {
	cfg := DefaultConfig()
	cfg.TableIDStrategy = TableIDOffset
	cfg.TagMode = TagModeSerialized
	return cfg
}

// Rules returns the effective iframe rule table for this configuration.
func (c *Config) Rules() []IframeRule {
	host := c.RelayHost
	if host == "" {
		host = DefaultRelayHost
	}
	rules := builtinRules(host)
	return append(rules, c.ExtraIframeRules...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration and returns a readable error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s %s", field, formatValidationError(e)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "hostname_rfc1123":
		return "must be a hostname"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
