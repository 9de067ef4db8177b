package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/krishi-ai/krishi-go/internal/metrics"
)

const defaultBaseURL = "https://api.deepgram.com"

// Transcript is the result of a speech-to-text call. When the requested
// language is unsupported, Text carries the fixed fallback notice and
// LanguageSupported is false; no upstream call is made.
type Transcript struct {
	Text              string
	LanguageSupported bool
}

// Synthesis is the result of a text-to-speech call. When the requested
// language is unsupported, Audio is nil and Fallback carries the fixed
// notice.
type Synthesis struct {
	Audio    []byte
	MIME     string
	Fallback string
}

// Deepgram is a thin client over the Deepgram listen and speak APIs.
type Deepgram struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewDeepgram creates a Deepgram client.
func NewDeepgram(apiKey string, logger *slog.Logger, collector *metrics.Collector) *Deepgram {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deepgram{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
		metrics: collector,
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (d *Deepgram) SetBaseURL(u string) {
	d.baseURL = u
}

// Transcribe converts audio to text in the declared language.
func (d *Deepgram) Transcribe(ctx context.Context, audio []byte, language string) (Transcript, error) {
	if !CanTranscribe(language) {
		d.logger.Info("unsupported transcription language, returning fallback", "language", language)
		return Transcript{Text: TranscriptionFallback, LanguageSupported: false}, nil
	}

	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("language", language)
	q.Set("smart_format", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v1/listen?"+q.Encode(), bytes.NewReader(audio))
	if err != nil {
		return Transcript{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/*")

	start := time.Now()
	resp, err := d.http.Do(req)
	if d.metrics != nil {
		d.metrics.RecordTiming(metrics.OpSTT, time.Since(start))
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcript{}, fmt.Errorf("deepgram stt error (status %d): %s", resp.StatusCode, body)
	}

	var result struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return Transcript{}, fmt.Errorf("deepgram returned no transcript alternatives")
	}

	return Transcript{
		Text:              result.Results.Channels[0].Alternatives[0].Transcript,
		LanguageSupported: true,
	}, nil
}

// Synthesize converts text to speech in the requested language.
func (d *Deepgram) Synthesize(ctx context.Context, text, language string) (Synthesis, error) {
	voice, ok := synthesisVoices[language]
	if !ok {
		d.logger.Info("unsupported synthesis language, returning fallback", "language", language)
		return Synthesis{Fallback: SynthesisFallback}, nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Synthesis{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v1/speak?model="+url.QueryEscape(voice), bytes.NewReader(payload))
	if err != nil {
		return Synthesis{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.http.Do(req)
	if d.metrics != nil {
		d.metrics.RecordTiming(metrics.OpTTS, time.Since(start))
	}
	if err != nil {
		return Synthesis{}, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Synthesis{}, fmt.Errorf("deepgram tts error (status %d): %s", resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return Synthesis{}, fmt.Errorf("read audio: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	return Synthesis{Audio: audio, MIME: mime}, nil
}
