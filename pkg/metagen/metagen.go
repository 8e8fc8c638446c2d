// Package metagen adapts generative text providers to seojob.Generator.
//
// Every provider implements [Completer]: one system prompt plus one user
// prompt in, raw text out. [Generator] builds the prompt from a
// seojob.GenerationContext, calls the completer and parses the JSON reply
// into seojob.Metadata. Provider packages live under metagen/ and classify
// their SDK errors with [Classify].
package metagen

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
)

// Options tune a single completion call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// NewOptions applies opts over the provider's default model.
func NewOptions(defaultModel string, opts ...Option) Options {
	o := Options{Model: defaultModel, Temperature: 0.3, MaxTokens: 1024}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Completer is one provider's text completion call.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt, opts Options) (string, error)
}

// Generator implements seojob.Generator on top of a Completer.
type Generator struct {
	provider  string
	completer Completer
	opts      Options
}

var _ seojob.Generator = (*Generator)(nil)

func NewGenerator(provider string, completer Completer, opts Options) *Generator {
	return &Generator{provider: provider, completer: completer, opts: opts}
}

// Provider returns the provider name, e.g. "openai".
func (g *Generator) Provider() string { return g.provider }

// Model returns the model the generator calls.
func (g *Generator) Model() string { return g.opts.Model }

func (g *Generator) Generate(ctx context.Context, gc seojob.GenerationContext) (seojob.Metadata, error) {
	if g.opts.Model == "" {
		return seojob.Metadata{}, ErrMissingConfig(g.provider, "model")
	}

	prompt := BuildPrompt(gc)
	raw, err := g.completer.Complete(ctx, prompt, g.opts)
	if err != nil {
		return seojob.Metadata{}, err
	}

	meta, err := ParseMetadata(raw)
	if err != nil {
		logx.WithFields(logx.Fields{
			"provider": g.provider,
			"model":    g.opts.Model,
			"title":    gc.Title,
		}).WithError(err).Debug("metagen: unusable completion")
		var e *errx.Error
		if errx.As(err, &e) {
			e.WithDetail("provider", g.provider)
		}
		return seojob.Metadata{}, err
	}
	return meta, nil
}
