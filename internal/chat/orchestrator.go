// Package chat drives a conversation exchange end to end: normalize the
// incoming message, snapshot recent history, ask the advisory model, and
// persist the user/assistant pair atomically.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/krishi-ai/krishi-go/internal/advisory"
	"github.com/krishi-ai/krishi-go/internal/blob"
	"github.com/krishi-ai/krishi-go/internal/models"
	"github.com/krishi-ai/krishi-go/internal/speech"
)

// DefaultHistoryWindow is how many prior turns are handed to the model
// when the orchestrator is built with window <= 0.
const DefaultHistoryWindow = 10

// HistoryStore is the persistence surface the orchestrator needs.
type HistoryStore interface {
	Append(ctx context.Context, userID string, turns ...models.Turn) error
	Recent(ctx context.Context, userID string, limit int) ([]models.Turn, error)
	All(ctx context.Context, userID string) ([]models.Turn, error)
	Clear(ctx context.Context, userID string) error
}

// Advisor produces model-generated text.
type Advisor interface {
	GenerateReply(ctx context.Context, history []models.Turn, language string) (string, error)
	AnalyseDiagnosis(ctx context.Context, diag advisory.Diagnosis) (string, error)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (speech.Transcript, error)
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (speech.Synthesis, error)
}

// Classifier runs the crop image through the disease and pest models.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (disease, pest []advisory.Prediction, err error)
}

// Result is the outcome of one exchange.
type Result struct {
	// UserText is what was recorded as the user turn: the typed text, the
	// transcript, or a file reference for an image.
	UserText string `json:"user_text"`
	// ReplyText is the assistant turn content.
	ReplyText string `json:"reply_text"`
	// Transcript is set for voice exchanges.
	Transcript string `json:"transcript,omitempty"`
	// Audio carries synthesized reply audio for voice exchanges.
	Audio     []byte `json:"audio,omitempty"`
	AudioMIME string `json:"audio_mime,omitempty"`
	// AudioID is the stored blob id of the reply audio, fetchable later
	// through the media route.
	AudioID string `json:"audio_id,omitempty"`
	// ImageID is the stored blob id for diagnosis exchanges.
	ImageID string `json:"image_id,omitempty"`
}

// Orchestrator wires the conversation pipeline together.
type Orchestrator struct {
	history    HistoryStore
	advisor    Advisor
	stt        Transcriber
	tts        Synthesizer
	classifier Classifier
	blobs      blob.Store
	window     int
	logger     *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New builds an orchestrator. stt, tts, and classifier may be nil when the
// corresponding pipeline is disabled; the matching entry points then error.
func New(history HistoryStore, advisor Advisor, stt Transcriber, tts Synthesizer, classifier Classifier, blobs blob.Store, window int, logger *slog.Logger) *Orchestrator {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		history:    history,
		advisor:    advisor,
		stt:        stt,
		tts:        tts,
		classifier: classifier,
		blobs:      blobs,
		window:     window,
		logger:     logger,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// lockUser serializes exchanges per user so that the history snapshot and
// the pair append cannot interleave with a concurrent exchange for the
// same user.
func (o *Orchestrator) lockUser(userID string) func() {
	o.mu.Lock()
	l, ok := o.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.userLocks[userID] = l
	}
	o.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// PostTextMessage runs one typed exchange.
func (o *Orchestrator) PostTextMessage(ctx context.Context, userID, text, language string) (Result, error) {
	text = strings.TrimSpace(text)
	if userID == "" {
		return Result{}, fmt.Errorf("empty user id")
	}
	if text == "" {
		return Result{}, fmt.Errorf("empty message")
	}

	unlock := o.lockUser(userID)
	defer unlock()

	reply, err := o.exchange(ctx, userID, models.NewTurn(models.RoleUser, text), language)
	if err != nil {
		return Result{}, err
	}
	return Result{UserText: text, ReplyText: reply}, nil
}

// PostVoiceMessage transcribes the audio, runs the exchange on the
// transcript, and synthesizes the reply. An unsupported transcription
// language short-circuits to the fallback notice without touching history.
func (o *Orchestrator) PostVoiceMessage(ctx context.Context, userID string, audio []byte, language string) (Result, error) {
	if o.stt == nil {
		return Result{}, fmt.Errorf("voice pipeline not configured")
	}
	if userID == "" {
		return Result{}, fmt.Errorf("empty user id")
	}
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("empty audio")
	}

	tr, err := o.stt.Transcribe(ctx, audio, language)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe voice message: %w", err)
	}
	if !tr.LanguageSupported {
		return Result{ReplyText: tr.Text}, nil
	}
	if strings.TrimSpace(tr.Text) == "" {
		return Result{}, fmt.Errorf("empty transcript")
	}

	unlock := o.lockUser(userID)
	defer unlock()

	reply, err := o.exchange(ctx, userID, models.NewTurn(models.RoleUser, tr.Text), language)
	if err != nil {
		return Result{}, err
	}

	res := Result{UserText: tr.Text, Transcript: tr.Text, ReplyText: reply}
	if o.tts != nil {
		synth, err := o.tts.Synthesize(ctx, reply, language)
		switch {
		case err != nil:
			// The text reply already stands on its own.
			o.logger.Warn("reply synthesis failed", "user_id", userID, "error", err)
		case synth.Fallback != "":
			o.logger.Info("reply synthesis unavailable for language", "language", language)
		default:
			res.Audio = synth.Audio
			res.AudioMIME = synth.MIME
			if o.blobs != nil {
				id, err := o.blobs.Put(ctx, synth.MIME, synth.Audio)
				if err != nil {
					// The inline bytes still reach the caller.
					o.logger.Warn("store reply audio", "user_id", userID, "error", err)
				} else {
					res.AudioID = id
				}
			}
		}
	}
	return res, nil
}

// PostDiagnosis classifies the crop image, stores it, and records the
// exchange as a file-reference user turn plus the analysis as the
// assistant turn. The image is stored only once the model calls have
// succeeded so a failed diagnosis leaves no stray blob behind.
func (o *Orchestrator) PostDiagnosis(ctx context.Context, userID string, image []byte, imageMIME, language string) (Result, error) {
	if o.classifier == nil || o.blobs == nil {
		return Result{}, fmt.Errorf("diagnosis pipeline not configured")
	}
	if userID == "" {
		return Result{}, fmt.Errorf("empty user id")
	}
	if len(image) == 0 {
		return Result{}, fmt.Errorf("empty image")
	}

	if imageMIME == "" {
		imageMIME = "image/jpeg"
	}
	disease, pest, err := o.classifier.Classify(ctx, image)
	if err != nil {
		return Result{}, fmt.Errorf("classify image: %w", err)
	}

	analysis, err := o.advisor.AnalyseDiagnosis(ctx, advisory.Diagnosis{
		Disease:   disease,
		Pest:      pest,
		Image:     image,
		ImageMIME: imageMIME,
		Language:  language,
	})
	if err != nil {
		return Result{}, fmt.Errorf("analyse image: %w", err)
	}

	imageID, err := o.blobs.Put(ctx, imageMIME, image)
	if err != nil {
		return Result{}, fmt.Errorf("store image: %w", err)
	}

	unlock := o.lockUser(userID)
	defer unlock()

	pair := []models.Turn{
		models.NewFileTurn(models.RoleUser, imageID),
		models.NewTurn(models.RoleAssistant, analysis),
	}
	if err := o.history.Append(ctx, userID, pair...); err != nil {
		return Result{}, fmt.Errorf("persist diagnosis exchange: %w", err)
	}

	return Result{UserText: models.FileRef(imageID), ReplyText: analysis, ImageID: imageID}, nil
}

// History returns the conversation, oldest first. A positive limit
// restricts the result to the most recent turns; zero means everything.
func (o *Orchestrator) History(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}
	if limit > 0 {
		return o.history.Recent(ctx, userID, limit)
	}
	return o.history.All(ctx, userID)
}

// Clear wipes the conversation. Clearing an unknown user is a no-op.
func (o *Orchestrator) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("empty user id")
	}
	unlock := o.lockUser(userID)
	defer unlock()
	return o.history.Clear(ctx, userID)
}

// exchange is the shared text path: snapshot recent turns, generate the
// reply against snapshot plus the new user turn, then append the pair in
// one batch. Caller holds the user lock.
func (o *Orchestrator) exchange(ctx context.Context, userID string, userTurn models.Turn, language string) (string, error) {
	recent, err := o.history.Recent(ctx, userID, o.window)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	prompt := make([]models.Turn, 0, len(recent)+1)
	prompt = append(prompt, recent...)
	prompt = append(prompt, userTurn)

	reply, err := o.advisor.GenerateReply(ctx, prompt, language)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	pair := []models.Turn{userTurn, models.NewTurn(models.RoleAssistant, reply)}
	if err := o.history.Append(ctx, userID, pair...); err != nil {
		return "", fmt.Errorf("persist exchange: %w", err)
	}
	return reply, nil
}
