package main

import (
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// Options are the command line options of vattr.
type Options struct {
	Driver   string   `short:"d" long:"driver" description:"database/sql driver" default:"sqlite" choice:"sqlite" choice:"sqlite3" choice:"postgres" choice:"mysql"`
	DSN      string   `long:"dsn" description:"data source name" required:"true"`
	Table    string   `short:"t" long:"table" description:"table holding the records" required:"true"`
	Key      string   `short:"k" long:"key" description:"primary key column" default:"id"`
	Store    string   `short:"s" long:"store" description:"text column the virtual attributes are stored in" required:"true"`
	Attrs    []string `short:"a" long:"attr" description:"virtual attribute name, repeatable" required:"true"`
	Rules    []string `short:"r" long:"rules" description:"attribute rules as name=rule list, e.g. color=oneof(red,blue)"`
	ID       string   `long:"id" description:"id of the record to load and update"`
	Set      []string `long:"set" description:"attribute value as name=value; values are parsed as YAML scalars"`
	Create   bool     `long:"create" description:"create a demo table when it does not exist"`
	Codec    string   `short:"c" long:"codec" description:"store codec" default:"yaml" choice:"yaml" choice:"json"`
	SeqURL   string   `long:"seq-url" description:"Seq server URL for log shipping"`
	LogLevel string   `short:"l" long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

// ruleTags returns the --rules values keyed by attribute.
func (o *Options) ruleTags() (map[string]string, error) {
	if len(o.Rules) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(o.Rules))
	for _, r := range o.Rules {
		name, tag, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errorc.With(errors.ErrInvalidRule, errorc.String(errors.ErrorFieldRuleName, r))
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(tag)
	}
	return out, nil
}
