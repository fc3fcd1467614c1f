package config

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// Duration is a time.Duration that decodes from "30s" style strings or
// from a number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var secs float64
	if err := json.Unmarshal(b, &secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "duration must be a string or a number of seconds")
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalTOML implements toml.Unmarshaler for integer seconds; strings go
// through the same parsing as JSON.
func (d *Duration) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(v * float64(time.Second))
	case string:
		return d.UnmarshalText([]byte(v))
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "duration must be a string or a number of seconds, got %T", v)
	}
	return nil
}

// CSSPath is the copy-css option: false, true (the default location) or a
// path relative to the book root.
type CSSPath struct {
	Path string
}

// Enabled reports whether the stylesheet should be written.
func (p CSSPath) Enabled() bool { return p.Path != "" }

func (p *CSSPath) set(v any) error {
	switch v := v.(type) {
	case nil:
		p.Path = ""
	case bool:
		p.Path = ""
		if v {
			p.Path = DefaultCSSPath
		}
	case string:
		p.Path = v
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "copy-css must be a boolean or a string, got %T", v)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *CSSPath) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "copy-css")
	}
	return p.set(v)
}

// MarshalJSON implements json.Marshaler.
func (p CSSPath) MarshalJSON() ([]byte, error) {
	if p.Path == "" {
		return []byte("false"), nil
	}
	return json.Marshal(p.Path)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (p *CSSPath) UnmarshalTOML(v any) error { return p.set(v) }
