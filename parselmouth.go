package parselmouth

import (
	"io"
	"log/slog"

	"github.com/feather-lang/parselmouth/binding"
	"github.com/feather-lang/parselmouth/interp"
	"github.com/feather-lang/parselmouth/lapack"
)

// Version is the version of this module.
const Version = "0.1.0"

type options struct {
	config Config
	logger *slog.Logger
	out    io.Writer
}

// Option configures New.
type Option func(*options)

// WithConfig applies cfg. Its logging section is ignored when WithLogger is
// also given.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger sets the logger of the interpreter and the registrar.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOutput sets where "puts" writes.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// New returns an interpreter with the whole praat hierarchy registered and
// the numerical helper commands installed.
func New(opts ...Option) (*interp.Interp, error) {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	iopts := []interp.Option{interp.WithLogger(o.logger)}
	if o.config.Interp.RecursionLimit > 0 {
		iopts = append(iopts, interp.WithRecursionLimit(o.config.Interp.RecursionLimit))
	}
	if o.out != nil {
		iopts = append(iopts, interp.WithOutput(o.out))
	}
	in := interp.New(iopts...)

	err := RegisterAll(in,
		binding.WithLogger(o.logger),
		binding.WithEnumCase(o.config.Enums.EnumCase),
	)
	if err != nil {
		in.Close()
		return nil, err
	}
	if err := in.Register("lapack_version", lapackVersion); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

// lapackVersion returns the linear algebra library version as a list.
func lapackVersion() ([]int, error) {
	var major, minor, patch int
	if err := binding.CheckStatus("ilaver", lapack.Ilaver(&major, &minor, &patch)); err != nil {
		return nil, err
	}
	return []int{major, minor, patch}, nil
}
