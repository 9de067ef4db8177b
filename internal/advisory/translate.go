package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/krishi-ai/krishi-go/internal/metrics"
	"github.com/krishi-ai/krishi-go/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// translatedFields is the exact set of human-readable market record
// fields the translator is allowed to touch. Prices, dates and key names
// pass through byte-identical.
type translatedFields struct {
	State     string `json:"state"`
	District  string `json:"district"`
	Market    string `json:"market"`
	Commodity string `json:"commodity"`
	Variety   string `json:"variety"`
	Grade     string `json:"grade"`
}

// TranslateRecords translates the allowlisted string fields of market
// records into the target language. Fail-soft: any malformed model output
// returns the records untranslated. Never returns an error to the caller.
func (c *Client) TranslateRecords(ctx context.Context, records []models.MarketRecord, language string) []models.MarketRecord {
	if len(records) == 0 || language == "" || language == "en" {
		return records
	}

	payload := make([]translatedFields, len(records))
	for i, r := range records {
		payload[i] = translatedFields{
			State:     r.State,
			District:  r.District,
			Market:    r.Market,
			Commodity: r.Commodity,
			Variety:   r.Variety,
			Grade:     r.Grade,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal translation payload", "error", err)
		return records
	}

	prompt := fmt.Sprintf(`Translate the JSON field values below into %s.
Translate ONLY the values; keep every key exactly as it is.
Do not add, remove or reorder array elements.
Respond with ONLY the translated JSON array, no explanation and no markdown.

%s`, languageWord(language), string(data))

	start := time.Now()
	raw, err := c.generate(ctx, llms.TextPart(prompt))
	c.record(metrics.OpLLMTranslate, start)
	if err != nil {
		c.logger.Warn("translation call failed, returning untranslated records",
			"error", err, "language", language)
		return records
	}

	var translated []translatedFields
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &translated); err != nil {
		c.logger.Warn("translator returned non-JSON output, returning untranslated records",
			"error", err, "language", language)
		return records
	}
	if len(translated) != len(records) {
		c.logger.Warn("translator changed record count, returning untranslated records",
			"got", len(translated), "want", len(records))
		return records
	}

	out := make([]models.MarketRecord, len(records))
	for i, r := range records {
		out[i] = r
		out[i].State = translated[i].State
		out[i].District = translated[i].District
		out[i].Market = translated[i].Market
		out[i].Commodity = translated[i].Commodity
		out[i].Variety = translated[i].Variety
		out[i].Grade = translated[i].Grade
	}
	return out
}

// TranslateText translates free text into the target language. Fail-soft:
// returns the original text when the call fails.
func (c *Client) TranslateText(ctx context.Context, text, language string) string {
	if text == "" || language == "" || language == "en" {
		return text
	}

	prompt := fmt.Sprintf(`Translate the following text into %s.
Respond with ONLY the translated text, no explanation.

%s`, languageWord(language), text)

	start := time.Now()
	translated, err := c.generate(ctx, llms.TextPart(prompt))
	c.record(metrics.OpLLMTranslate, start)
	if err != nil {
		c.logger.Warn("text translation failed, returning original",
			"error", err, "language", language)
		return text
	}
	return strings.TrimSpace(translated)
}

// stripCodeFence removes a surrounding markdown code fence if the model
// added one despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
