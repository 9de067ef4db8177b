package advisory

import (
	"fmt"
	"strings"

	"github.com/krishi-ai/krishi-go/internal/models"
)

// languageWord maps a language code to the word inserted into prompt
// instructions. Gemini follows "hindi" far more reliably than the bare
// code "hi", so that mapping must be preserved.
func languageWord(code string) string {
	if code == "hi" {
		return "hindi"
	}
	if code == "" {
		return "en"
	}
	return code
}

// chatPrompt renders the conversation history into the farming-expert
// chat prompt.
func chatPrompt(history []models.Turn, language string) string {
	var context strings.Builder
	for _, turn := range history {
		role := string(turn.Role)
		if len(role) > 0 {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		fmt.Fprintf(&context, "%s: %s\n\n", role, turn.Content)
	}

	return fmt.Sprintf(`You are a farming expert that has knowledge about crop planting and agricultural practices.
You are having a conversation with a farmer.
You are to provide a response to the farmer in a concise, friendly and easy to understand manner.
The response MUST be in the following language: %s.

Here is the conversation history:
%s
Please provide a helpful response to the farmer's latest message, taking into account the conversation context.`,
		languageWord(language), context.String())
}

// diagnosisPrompt renders classifier predictions into the plant-disease
// analysis prompt. Empty prediction lists are stated as such so the model
// falls back to analysing the image alone.
func diagnosisPrompt(diag Diagnosis) string {
	return fmt.Sprintf(`You are a farming expert that has knowledge about various plant diseases.
You are given an output from a plant disease and pest detection model, along with the input image.
You need to do the following:
1. Examine the result and provide a detailed analysis of the plant disease and/or pest to a farmer.
2. Provide a few economical ways to cure the disease and/or pest.
Respond in a concise and easy to understand manner.
The analysis MUST be in the following language: %s.
The model result is as follows:
Disease Model Predictions: %s
Pest Model Predictions: %s`,
		languageWord(diag.Language),
		formatPredictions(diag.Disease),
		formatPredictions(diag.Pest))
}

// notificationPrompt renders weather alert data into the notification
// composer prompt.
func notificationPrompt(alert models.WeatherAlert, language string) string {
	return fmt.Sprintf(`You are a farming expert that has knowledge about crop planting and agricultural practices.
You are given an alert from the weather api.
You need to create a notification message from the alert data in a friendly and easy to understand manner.
The notification message MUST be in the following language: %s.
The alert data is as follows:
Headline: %s
Event: %s
Severity: %s
Description: %s`,
		languageWord(language), alert.Headline, alert.Event, alert.Severity, alert.Desc)
}

func formatPredictions(preds []Prediction) string {
	if len(preds) == 0 {
		return "none detected"
	}
	items := make([]string, len(preds))
	for i, p := range preds {
		items[i] = fmt.Sprintf("%s with confidence %.2f", p.Class, p.Confidence)
	}
	return strings.Join(items, ", ")
}
