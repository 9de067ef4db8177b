// Package speech wraps the Deepgram speech-to-text and text-to-speech
// APIs. Both directions carry explicit, narrow supported-language sets;
// an unsupported language yields a deterministic fallback message rather
// than an error, which callers treat as a successful degraded result.
package speech

// TranscriptionFallback is returned as the transcript when a voice
// message arrives in a language the transcriber does not support.
const TranscriptionFallback = "Sorry, voice messages are not supported in this language yet. Please type your question instead."

// SynthesisFallback is returned when speech cannot be synthesized in the
// requested language.
const SynthesisFallback = "Audio is not available in this language yet."

// transcriptionLanguages is the set of language codes Deepgram nova-2
// handles well enough for farm advisory use.
var transcriptionLanguages = map[string]bool{
	"en": true,
	"hi": true,
	"ta": true,
	"te": true,
	"mr": true,
	"bn": true,
}

// synthesisVoices maps supported synthesis languages to Deepgram voice
// models.
var synthesisVoices = map[string]string{
	"en": "aura-asteria-en",
	"hi": "aura-2-hindi",
}

// CanTranscribe reports whether the language is in the supported
// transcription set.
func CanTranscribe(language string) bool {
	return transcriptionLanguages[language]
}

// CanSynthesize reports whether the language is in the supported
// synthesis set.
func CanSynthesize(language string) bool {
	_, ok := synthesisVoices[language]
	return ok
}
