package vattr

import (
	"log/slog"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/codec"
	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/validation"
)

// Option configures a Class at construction time.
type Option func(*Class) error

// WithCodec sets the codec used to serialize store columns. Defaults to codec.YAML.
func WithCodec(cd codec.Codec) Option {
	return func(c *Class) error {
		if cd == nil {
			return errorc.With(errors.ErrUnknownCodec, errorc.String(errors.ErrorFieldClassName, c.name))
		}
		c.codec = cd
		return nil
	}
}

// WithCodecName selects a built-in codec by name ("yaml" or "json").
func WithCodecName(name string) Option {
	return func(c *Class) error {
		cd, err := codec.ByName(name)
		if err != nil {
			return err
		}
		c.codec = cd
		return nil
	}
}

// WithLogger sets the class logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Class) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithRule registers a named validation rule usable in binding rule lists.
func WithRule(r validation.Rule) Option {
	return func(c *Class) error {
		if r == nil {
			return errors.ErrInvalidRule
		}
		return c.rulesRegistry.Add(r)
	}
}

// WithRules registers multiple rules at once.
func WithRules(rules ...validation.Rule) Option {
	return func(c *Class) error {
		for _, r := range rules {
			if err := WithRule(r)(c); err != nil {
				return err
			}
		}
		return nil
	}
}
