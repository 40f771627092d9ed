// Package openai implements transcription against the OpenAI
// speech-to-text API, with native streaming support.
package openai

import (
	"bytes"
	"context"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voxlab/scribe/errors"
	"github.com/voxlab/scribe/provider"
	"github.com/voxlab/scribe/transcription"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultModel   = "gpt-4o-mini-transcribe"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey   string        `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string        `json:"base_url,omitempty" yaml:"base_url" mapstructure:"base_url"`
	Model    string        `json:"model" yaml:"model" mapstructure:"model"`
	Language string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements transcription.Streamer using the OpenAI API.
type Provider struct {
	cfg    Config
	client openai.Client
}

var _ transcription.Streamer = (*Provider)(nil)

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

// Factory returns a provider.Factory that creates OpenAI providers from
// a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			oc.Language = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			oc.Timeout = v
		}
		return NewProvider(oc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured with credentials.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

func (p *Provider) params(req transcription.Request) openai.AudioTranscriptionNewParams {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(req.Audio), filename, "application/octet-stream"),
		Model: openai.AudioModel(model),
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}
	return params
}

// Transcribe sends the audio in one shot and returns the full text.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	result, err := p.client.Audio.Transcriptions.New(ctx, p.params(req))
	if err != nil {
		return nil, errors.UpstreamFailed(ProviderName, err)
	}
	return &transcription.Response{Text: result.Text}, nil
}

// TranscribeStream starts a streaming transcription. Delta events map to
// incremental chunks and the done event to the final chunk; a stream
// that ends without a done event yields neither Final nor Err, and the
// channel simply closes.
func (p *Provider) TranscribeStream(ctx context.Context, req transcription.Request) (<-chan transcription.Chunk, error) {
	stream := p.client.Audio.Transcriptions.NewStreaming(ctx, p.params(req))

	ch := make(chan transcription.Chunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "transcript.text.delta":
				if !send(ctx, ch, transcription.Chunk{Text: event.Delta}) {
					return
				}
			case "transcript.text.done":
				send(ctx, ch, transcription.Chunk{Text: event.Text, Final: true})
				return
			}
		}
		if err := stream.Err(); err != nil {
			send(ctx, ch, transcription.Chunk{Err: errors.UpstreamFailed(ProviderName, err)})
		}
	}()
	return ch, nil
}

func send(ctx context.Context, ch chan<- transcription.Chunk, c transcription.Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
