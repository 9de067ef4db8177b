package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/infer/workflows/acme/plant-health", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req["api_key"])

		_, _ = w.Write([]byte(`{"outputs":[{
			"disease_predictions":{"predictions":{"predictions":[
				{"class":"leaf_curl","confidence":0.91},
				{"class":"early_blight","confidence":0.42}]}},
			"pest_predictions":{"predictions":{"predictions":[
				{"class":"aphid","confidence":0.77}]}}
		}]}`))
	}))
	defer srv.Close()

	rf := New("test-key", "acme", "plant-health", nil, nil)
	rf.SetBaseURL(srv.URL)

	disease, pest, err := rf.Classify(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Len(t, disease, 2)
	assert.Equal(t, "leaf_curl", disease[0].Class)
	assert.InDelta(t, 0.91, disease[0].Confidence, 1e-9)
	require.Len(t, pest, 1)
	assert.Equal(t, "aphid", pest[0].Class)
}

func TestClassifyEmptyPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":[{
			"disease_predictions":{"predictions":{"predictions":[]}},
			"pest_predictions":{"predictions":{"predictions":[]}}
		}]}`))
	}))
	defer srv.Close()

	rf := New("key", "ws", "wf", nil, nil)
	rf.SetBaseURL(srv.URL)

	disease, pest, err := rf.Classify(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, disease)
	assert.Empty(t, pest)
}

func TestClassifyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	rf := New("bad", "ws", "wf", nil, nil)
	rf.SetBaseURL(srv.URL)

	_, _, err := rf.Classify(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClassifyNoOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":[]}`))
	}))
	defer srv.Close()

	rf := New("key", "ws", "wf", nil, nil)
	rf.SetBaseURL(srv.URL)

	_, _, err := rf.Classify(context.Background(), []byte("img"))
	assert.Error(t, err)
}
