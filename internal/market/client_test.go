package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi-ai/krishi-go/internal/models"
)

type passthroughTranslator struct {
	called   bool
	language string
}

func (p *passthroughTranslator) TranslateRecords(_ context.Context, records []models.MarketRecord, language string) []models.MarketRecord {
	p.called = true
	p.language = language
	return records
}

func TestPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api-key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "Karnataka", q.Get("filters[state.keyword]"))
		assert.Equal(t, "Tomato", q.Get("filters[commodity]"))
		assert.Equal(t, "", q.Get("filters[district]"), "empty filters must be omitted")
		assert.Equal(t, "5", q.Get("limit"))

		_, _ = w.Write([]byte(`{"total":1,"count":1,"records":[
			{"state":"Karnataka","district":"Bangalore","market":"Binny Mill",
			 "commodity":"Tomato","variety":"Local","grade":"FAQ",
			 "arrival_date":"2026-08-29","min_price":"1200","max_price":"1800","modal_price":"1500"}]}`))
	}))
	defer srv.Close()

	c := New("test-key", nil, nil)
	c.SetBaseURL(srv.URL)

	records, err := c.Prices(context.Background(), models.MarketQuery{
		State:     "Karnataka",
		Commodity: "Tomato",
		Limit:     5,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Binny Mill", records[0].Market)
	assert.Equal(t, "1500", records[0].ModalPrice)
	assert.Equal(t, "2026-08-29", records[0].ArrivalDate)
}

func TestPricesTranslatorInvoked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"count":0,"records":[]}`))
	}))
	defer srv.Close()

	tr := &passthroughTranslator{}
	c := New("key", tr, nil)
	c.SetBaseURL(srv.URL)

	records, err := c.Prices(context.Background(), models.MarketQuery{Language: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.True(t, tr.called)
	assert.Equal(t, "hi", tr.language)
}

func TestPricesDefaultLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer srv.Close()

	c := New("key", nil, nil)
	c.SetBaseURL(srv.URL)

	_, err := c.Prices(context.Background(), models.MarketQuery{})
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
}

func TestPricesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("key", nil, nil)
	c.SetBaseURL(srv.URL)

	_, err := c.Prices(context.Background(), models.MarketQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
