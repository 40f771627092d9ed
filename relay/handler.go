package relay

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxlab/scribe/audio"
	"github.com/voxlab/scribe/convert"
	"github.com/voxlab/scribe/errors"
	"github.com/voxlab/scribe/logger"
	"github.com/voxlab/scribe/observability"
	"github.com/voxlab/scribe/provider"
	"github.com/voxlab/scribe/server"
	"github.com/voxlab/scribe/transcription"
	"github.com/voxlab/scribe/wire"
)

// Handler serves the transcription endpoints.
type Handler struct {
	registry        *provider.Registry[transcription.Provider]
	defaultProvider string
	converter       *convert.Converter
	metrics         *observability.Metrics
	log             *logger.Logger
}

// NewHandler creates a relay handler. metrics may be nil when telemetry
// is disabled.
func NewHandler(
	registry *provider.Registry[transcription.Provider],
	defaultProvider string,
	converter *convert.Converter,
	metrics *observability.Metrics,
) *Handler {
	return &Handler{
		registry:        registry,
		defaultProvider: defaultProvider,
		converter:       converter,
		metrics:         metrics,
		log:             logger.GetGlobalLogger().WithComponent("relay"),
	}
}

// RegisterRoutes mounts the transcription endpoints on the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/transcribe", h.TranscribeSync)
	v1.POST("/transcribe/stream", h.TranscribeStream)
}

// transcribeRequest is the shared request body of both endpoints.
type transcribeRequest struct {
	// Audio is the base64-encoded upload.
	Audio string `json:"audio"`
	// Language optionally names the expected language (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model optionally overrides the provider's default model.
	Model string `json:"model,omitempty"`
	// Provider optionally selects a registered backend by name.
	Provider string `json:"provider,omitempty"`
}

// parseRequest binds and validates the request body and decodes the
// audio payload. All failures here happen before any response bytes,
// so they surface as JSON errors.
func (h *Handler) parseRequest(c *gin.Context) (*transcribeRequest, []byte, *errors.AppError) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, nil, errors.Validation("Request body must be valid JSON.")
	}
	if req.Audio == "" {
		return nil, nil, errors.MissingField("audio")
	}
	data, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return nil, nil, errors.InvalidFormat("audio", "base64-encoded audio bytes")
	}
	if len(data) == 0 {
		return nil, nil, errors.MissingField("audio")
	}
	return &req, data, nil
}

func (h *Handler) resolveProvider(name string) (transcription.Provider, *errors.AppError) {
	if name == "" {
		name = h.defaultProvider
	}
	p, ok := h.registry.Get(name)
	if !ok {
		return nil, errors.NotFound("transcription provider", name)
	}
	return p, nil
}

// normalize classifies the upload and converts it to WAV unless it is
// already wav or mp3, which pass through byte-for-byte.
func (h *Handler) normalize(ctx context.Context, data []byte) ([]byte, audio.Format, error) {
	format := audio.Detect(data)
	if !audio.NeedsConversion(format) {
		return data, format, nil
	}

	start := time.Now()
	converted, err := h.converter.ToWAV(ctx, data, format)
	if h.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		h.metrics.RecordConversion(ctx, string(format), status, time.Since(start))
	}
	if err != nil {
		return nil, format, err
	}
	return converted, audio.FormatWAV, nil
}

func filenameFor(format audio.Format) string {
	if format == audio.FormatMP3 {
		return "audio.mp3"
	}
	return "audio.wav"
}

// TranscribeSync handles POST /v1/transcribe.
func (h *Handler) TranscribeSync(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "relay.transcribe")
	defer span.End()

	req, data, appErr := h.parseRequest(c)
	if appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}
	p, appErr := h.resolveProvider(req.Provider)
	if appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	start := time.Now()
	normalized, format, err := h.normalize(ctx, data)
	if err != nil {
		observability.SetSpanError(ctx, err)
		h.recordRequest(ctx, p.Name(), "sync", "error", start)
		server.RespondWithError(c, err)
		return
	}

	resp, err := p.Transcribe(ctx, transcription.Request{
		Audio:    normalized,
		Filename: filenameFor(format),
		Language: req.Language,
		Model:    req.Model,
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		h.recordRequest(ctx, p.Name(), "sync", "error", start)
		server.RespondWithError(c, err)
		return
	}

	h.recordRequest(ctx, p.Name(), "sync", "ok", start)
	h.log.Info("transcription completed", logger.Fields(
		logger.FieldProvider, p.Name(),
		logger.FieldFormat, string(format),
		"text_len", len(resp.Text),
	))
	server.RespondOK(c, resp)
}

// TranscribeStream handles POST /v1/transcribe/stream. Once headers are
// committed the JSON error channel is gone; every later failure becomes
// a terminal error frame.
func (h *Handler) TranscribeStream(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "relay.transcribe_stream")
	defer span.End()

	req, data, appErr := h.parseRequest(c)
	if appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}
	p, appErr := h.resolveProvider(req.Provider)
	if appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	sw, err := wire.NewWriter(c.Writer)
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}

	// Commit the stream. From here on, errors travel as wire frames.
	sw.WriteHeaders()
	if h.metrics != nil {
		h.metrics.StreamStarted(ctx)
		defer h.metrics.StreamEnded(ctx)
	}

	start := time.Now()
	normalized, format, err := h.normalize(ctx, data)
	if err != nil {
		h.failStream(ctx, sw, p.Name(), start, err)
		return
	}

	chunks, err := transcription.Stream(ctx, p, transcription.Request{
		Audio:    normalized,
		Filename: filenameFor(format),
		Language: req.Language,
		Model:    req.Model,
	})
	if err != nil {
		h.failStream(ctx, sw, p.Name(), start, err)
		return
	}

	var total string
	for chunk := range chunks {
		switch {
		case chunk.Err != nil:
			h.failStream(ctx, sw, p.Name(), start, chunk.Err)
			return
		case chunk.Final:
			total = chunk.Text
			if err := sw.WriteDone(total); err != nil {
				h.clientGone(p.Name(), err)
				return
			}
			h.finishStream(ctx, p.Name(), format, total, start)
			return
		default:
			total += chunk.Text
			if err := sw.WriteDelta(chunk.Text); err != nil {
				h.clientGone(p.Name(), err)
				return
			}
		}
	}

	// Upstream closed without a terminal chunk; the accumulated text is
	// all there is. Still emit a done frame so clients see a clean end.
	if err := sw.WriteDone(total); err != nil {
		h.clientGone(p.Name(), err)
		return
	}
	h.finishStream(ctx, p.Name(), format, total, start)
}

func (h *Handler) failStream(ctx context.Context, sw *wire.Writer, providerName string, start time.Time, err error) {
	observability.SetSpanError(ctx, err)
	h.recordRequest(ctx, providerName, "stream", "error", start)

	msg := err.Error()
	if appErr, ok := errors.AsAppError(err); ok {
		msg = appErr.Message
	}
	fields := logger.ErrorFields("transcribe_stream", err)
	fields[logger.FieldProvider] = providerName
	h.log.Error("stream failed", fields)
	if werr := sw.WriteError(msg); werr != nil {
		h.clientGone(providerName, werr)
	}
}

func (h *Handler) finishStream(ctx context.Context, providerName string, format audio.Format, total string, start time.Time) {
	h.recordRequest(ctx, providerName, "stream", "ok", start)
	h.log.Info("stream completed", logger.Fields(
		logger.FieldProvider, providerName,
		logger.FieldFormat, string(format),
		"text_len", len(total),
	))
}

func (h *Handler) clientGone(providerName string, err error) {
	h.log.Warn("client disconnected mid-stream", logger.Fields(
		logger.FieldProvider, providerName,
		"error", err.Error(),
	))
}

func (h *Handler) recordRequest(ctx context.Context, providerName, mode, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordTranscription(ctx, providerName, mode, status, time.Since(start))
	if status == "error" {
		h.metrics.RecordError(ctx, status, "relay")
	}
}
