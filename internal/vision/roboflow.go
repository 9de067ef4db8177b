// Package vision calls the hosted Roboflow workflow that classifies crop
// images for diseases and pests.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/krishi-ai/krishi-go/internal/advisory"
	"github.com/krishi-ai/krishi-go/internal/metrics"
)

const defaultEndpoint = "https://serverless.roboflow.com"

// Roboflow runs a serverless workflow against an uploaded image.
type Roboflow struct {
	apiKey    string
	workspace string
	workflow  string
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// New creates a Roboflow workflow client.
func New(apiKey, workspace, workflow string, logger *slog.Logger, collector *metrics.Collector) *Roboflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roboflow{
		apiKey:    apiKey,
		workspace: workspace,
		workflow:  workflow,
		baseURL:   defaultEndpoint,
		http:      &http.Client{Timeout: 90 * time.Second},
		logger:    logger,
		metrics:   collector,
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (r *Roboflow) SetBaseURL(u string) {
	r.baseURL = u
}

type workflowRequest struct {
	APIKey string                   `json:"api_key"`
	Inputs map[string]workflowImage `json:"inputs"`
}

type workflowImage struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type workflowResponse struct {
	Outputs []map[string]struct {
		Predictions struct {
			Predictions []struct {
				Class      string  `json:"class"`
				Confidence float64 `json:"confidence"`
			} `json:"predictions"`
		} `json:"predictions"`
	} `json:"outputs"`
}

// Classify sends the image through the workflow and returns the disease and
// pest prediction lists. Either list may be empty when the classifier finds
// nothing above its confidence threshold.
func (r *Roboflow) Classify(ctx context.Context, image []byte) (disease, pest []advisory.Prediction, err error) {
	body := workflowRequest{
		APIKey: r.apiKey,
		Inputs: map[string]workflowImage{
			"image": {Type: "base64", Value: base64.StdEncoding.EncodeToString(image)},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/infer/workflows/%s/%s", r.baseURL, r.workspace, r.workflow)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.http.Do(req)
	if r.metrics != nil {
		r.metrics.RecordTiming(metrics.OpVisionAnalyse, time.Since(start))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("run workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("roboflow error (status %d): %s", resp.StatusCode, raw)
	}

	var result workflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, fmt.Errorf("decode workflow response: %w", err)
	}
	if len(result.Outputs) == 0 {
		return nil, nil, fmt.Errorf("roboflow returned no outputs")
	}

	// The workflow exposes one output block per classifier, keyed by the
	// step name configured in the workflow editor.
	out := result.Outputs[0]
	for key, block := range out {
		preds := make([]advisory.Prediction, 0, len(block.Predictions.Predictions))
		for _, p := range block.Predictions.Predictions {
			preds = append(preds, advisory.Prediction{Class: p.Class, Confidence: p.Confidence})
		}
		switch key {
		case "disease_predictions":
			disease = preds
		case "pest_predictions":
			pest = preds
		default:
			r.logger.Debug("ignoring unknown workflow output", "key", key)
		}
	}
	return disease, pest, nil
}
