package convert

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/voxlab/scribe/audio"
	"github.com/voxlab/scribe/errors"
	"github.com/voxlab/scribe/logger"
	"github.com/voxlab/scribe/process"
	"github.com/voxlab/scribe/resilience"
)

// Converter transcodes audio buffers to WAV via ffmpeg.
type Converter struct {
	cfg      Config
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
}

// New creates a Converter. The config is defaulted and validated.
func New(cfg Config) (*Converter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Converter{
		cfg: cfg,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "ffmpeg",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.Timeout,
		}),
		log: logger.GetGlobalLogger().WithComponent("convert"),
	}, nil
}

// ToWAV converts data from the given source format into 16kHz mono PCM
// WAV and returns the converted bytes. Temp files created along the way
// are removed before ToWAV returns, on every path.
func (c *Converter) ToWAV(ctx context.Context, data []byte, format audio.Format) ([]byte, error) {
	out, err := resilience.ExecuteWithResult(c.bulkhead, ctx, func() ([]byte, error) {
		return c.convert(ctx, data, format)
	})
	if stderrors.Is(err, resilience.ErrBulkheadFull) || stderrors.Is(err, resilience.ErrBulkheadTimeout) {
		return nil, errors.Timeout("conversion queue")
	}
	return out, err
}

func (c *Converter) convert(ctx context.Context, data []byte, format audio.Format) ([]byte, error) {
	dir := c.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	id := uuid.NewString()
	inPath := filepath.Join(dir, "scribe-in-"+id+inputExt(format))
	outPath := filepath.Join(dir, "scribe-out-"+id+".wav")

	// Best-effort removal; a missing file is not worth reporting.
	defer func() {
		_ = os.Remove(inPath)
		_ = os.Remove(outPath)
	}()

	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, errors.Internal(err)
	}

	result, err := process.Run(ctx, process.Command{
		Binary:  c.cfg.FFmpegPath,
		Args:    c.args(inPath, outPath),
		Timeout: c.cfg.Timeout,
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("ffmpeg conversion timed out", logger.Fields(
				logger.FieldFormat, string(format),
				"timeout_ms", c.cfg.Timeout.Milliseconds(),
			))
			return nil, errors.Timeout("conversion")
		}
		exitCode := -1
		var detail string
		if result != nil {
			exitCode = result.ExitCode
			detail = lastStderrLine(result.Stderr)
		}
		c.log.Error("ffmpeg conversion failed", logger.Fields(
			logger.FieldFormat, string(format),
			"exit_code", exitCode,
			"stderr", detail,
		))
		appErr := errors.ConversionFailed(exitCode, err)
		if detail != "" {
			appErr = appErr.WithDetail("stderr", detail)
		}
		return nil, appErr
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.Internal(err)
	}

	fields := logger.DurationFields("convert", result.Duration)
	fields[logger.FieldFormat] = string(format)
	fields["input_bytes"] = len(data)
	fields["output_bytes"] = len(out)
	c.log.Debug("converted audio", fields)
	return out, nil
}

// args builds the ffmpeg invocation. -y overwrites the (uuid-named, so
// never pre-existing) output path without prompting; -vn strips any
// video stream a container may carry.
func (c *Converter) args(inPath, outPath string) []string {
	return []string{
		"-y",
		"-i", inPath,
		"-vn",
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-ac", strconv.Itoa(c.cfg.Channels),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		outPath,
	}
}

// inputExt gives ffmpeg a filename hint for containers it cannot always
// probe from content alone.
func inputExt(format audio.Format) string {
	switch format {
	case audio.FormatWebM:
		return ".webm"
	case audio.FormatMP4:
		return ".mp4"
	case audio.FormatOGG:
		return ".ogg"
	case audio.FormatMP3:
		return ".mp3"
	case audio.FormatWAV:
		return ".wav"
	default:
		return ".bin"
	}
}

func lastStderrLine(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
