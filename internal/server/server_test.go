package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi-ai/krishi-go/internal/blob"
	"github.com/krishi-ai/krishi-go/internal/chat"
	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/krishi-ai/krishi-go/internal/models"
)

type fakeChat struct {
	result  chat.Result
	err     error
	history []models.Turn

	lastUserID   string
	lastText     string
	lastLanguage string
	lastAudio    []byte
	lastLimit    int
	cleared      []string
}

func (f *fakeChat) PostTextMessage(_ context.Context, userID, text, language string) (chat.Result, error) {
	f.lastUserID, f.lastText, f.lastLanguage = userID, text, language
	return f.result, f.err
}

func (f *fakeChat) PostVoiceMessage(_ context.Context, userID string, audio []byte, language string) (chat.Result, error) {
	f.lastUserID, f.lastAudio, f.lastLanguage = userID, audio, language
	return f.result, f.err
}

func (f *fakeChat) PostDiagnosis(_ context.Context, userID string, image []byte, imageMIME, language string) (chat.Result, error) {
	f.lastUserID, f.lastAudio, f.lastLanguage = userID, image, language
	return f.result, f.err
}

func (f *fakeChat) History(_ context.Context, userID string, limit int) ([]models.Turn, error) {
	f.lastUserID, f.lastLimit = userID, limit
	return f.history, f.err
}

func (f *fakeChat) Clear(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return f.err
}

type fakeFarms struct {
	farmer *models.Farmer
	farm   *models.Farm
	farms  []models.Farm
	crop   *models.Crop
	crops  []models.Crop
	err    error

	lastUpdate db.FarmerUpdate

	locations       map[string]*models.Location
	createdLocation *models.Location
}

func (f *fakeFarms) CreateFarmer(_ context.Context, name, mobileNo, language string) (*models.Farmer, error) {
	return f.farmer, f.err
}

func (f *fakeFarms) UpdateFarmer(_ context.Context, farmerID string, upd db.FarmerUpdate) (*models.Farmer, error) {
	f.lastUpdate = upd
	return f.farmer, f.err
}

func (f *fakeFarms) GetFarmer(_ context.Context, farmerID string) (*models.Farmer, error) {
	return f.farmer, f.err
}

func (f *fakeFarms) CreateFarm(_ context.Context, farmerID, name string, size float64, district, state string) (*models.Farm, error) {
	return f.farm, f.err
}

func (f *fakeFarms) GetFarms(_ context.Context, farmerID string) ([]models.Farm, error) {
	return f.farms, f.err
}

func (f *fakeFarms) CreateCrop(_ context.Context, farmID, name, variety, description string, plantedAt time.Time, previousCrop, previousYield string) (*models.Crop, error) {
	return f.crop, f.err
}

func (f *fakeFarms) GetCropsByFarmer(_ context.Context, farmerID string) ([]models.Crop, error) {
	return f.crops, f.err
}

func (f *fakeFarms) GetLocation(_ context.Context, district, state string) (*models.Location, error) {
	if loc, ok := f.locations[district+"|"+state]; ok {
		return loc, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeFarms) CreateLocation(_ context.Context, district, state, topic string) (*models.Location, error) {
	f.createdLocation = &models.Location{District: district, State: state, FirebaseTopic: topic}
	return f.createdLocation, nil
}

type fakeSocial struct {
	post     *models.Post
	posts    []models.Post
	comment  *models.Comment
	comments []models.Comment
	err      error

	likedID string
}

func (f *fakeSocial) CreatePost(_ context.Context, userID, contentURL, contentDesc string) (*models.Post, error) {
	return f.post, f.err
}

func (f *fakeSocial) DeletePost(_ context.Context, postID, userID string) error {
	return f.err
}

func (f *fakeSocial) Feed(_ context.Context, limit, offset int) ([]models.Post, error) {
	return f.posts, f.err
}

func (f *fakeSocial) LikePost(_ context.Context, postID string) error {
	f.likedID = postID
	return f.err
}

func (f *fakeSocial) DislikePost(_ context.Context, postID string) error {
	return f.err
}

func (f *fakeSocial) CreateComment(_ context.Context, postID, userID, content string) (*models.Comment, error) {
	return f.comment, f.err
}

func (f *fakeSocial) DeleteComment(_ context.Context, commentID, userID string) error {
	return f.err
}

func (f *fakeSocial) CommentsForPost(_ context.Context, postID string, limit, offset int) ([]models.Comment, error) {
	return f.comments, f.err
}

type fakeMarket struct {
	records []models.MarketRecord
	err     error
	last    models.MarketQuery
}

func (f *fakeMarket) Prices(_ context.Context, query models.MarketQuery) ([]models.MarketRecord, error) {
	f.last = query
	return f.records, f.err
}

type fakeWeather struct {
	report       models.FarmWeather
	err          error
	lastLanguage string
	districts    []string
}

func (f *fakeWeather) FarmForecast(_ context.Context, district, state, language string) (models.FarmWeather, error) {
	f.lastLanguage = language
	f.districts = append(f.districts, district)
	return f.report, f.err
}

type fakeSubscriber struct {
	tokens map[string]string
	err    error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, token, topic string) error {
	if f.tokens == nil {
		f.tokens = make(map[string]string)
	}
	f.tokens[token] = topic
	return f.err
}

type testDeps struct {
	chat       *fakeChat
	farms      *fakeFarms
	social     *fakeSocial
	market     *fakeMarket
	weather    *fakeWeather
	subscriber *fakeSubscriber
	media      *blob.MemoryStore
}

func newTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		chat:       &fakeChat{},
		farms:      &fakeFarms{locations: map[string]*models.Location{}},
		social:     &fakeSocial{},
		market:     &fakeMarket{},
		weather:    &fakeWeather{},
		subscriber: &fakeSubscriber{},
		media:      blob.NewMemoryStore(),
	}
	s := New(deps.chat, deps.farms, deps.social, deps.market, deps.weather, deps.subscriber, deps.media, nil, nil)
	return s, deps
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatMessage(t *testing.T) {
	s, deps := newTestServer()
	deps.chat.result = chat.Result{UserText: "hello", ReplyText: "namaste"}

	rec := doJSON(t, s, http.MethodPost, "/chat/message", map[string]string{
		"user_id": "farmer-1", "message": "hello", "language": "hi",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "farmer-1", deps.chat.lastUserID)
	assert.Equal(t, "hi", deps.chat.lastLanguage)

	var res chat.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "namaste", res.ReplyText)
}

func TestChatMessageValidation(t *testing.T) {
	s, _ := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/chat/message", map[string]string{"user_id": "farmer-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/chat/message", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatVoiceMultipart(t *testing.T) {
	s, deps := newTestServer()
	deps.chat.result = chat.Result{Transcript: "hello", ReplyText: "hi there"}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("user_id", "farmer-1"))
	require.NoError(t, w.WriteField("language", "en"))
	fw, err := w.CreateFormFile("audio", "question.ogg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("ogg-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/chat/voice", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("ogg-bytes"), deps.chat.lastAudio)
	assert.Equal(t, "en", deps.chat.lastLanguage)
}

func TestChatHistoryAndClear(t *testing.T) {
	s, deps := newTestServer()
	deps.chat.history = []models.Turn{
		models.NewTurn(models.RoleUser, "q"),
		models.NewTurn(models.RoleAssistant, "a"),
	}

	rec := doJSON(t, s, http.MethodGet, "/chat/history/farmer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"farmer-1"`)
	assert.Equal(t, 0, deps.chat.lastLimit)

	rec = doJSON(t, s, http.MethodGet, "/chat/history/farmer-1?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, deps.chat.lastLimit)

	rec = doJSON(t, s, http.MethodGet, "/chat/history/farmer-1?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/chat/delete/farmer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"farmer-1"}, deps.chat.cleared)
}

func TestErrorMapping(t *testing.T) {
	s, deps := newTestServer()

	deps.farms.err = db.ErrNotFound
	rec := doJSON(t, s, http.MethodGet, "/farmer/get/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	deps.farms.err = db.ErrAlreadyExists
	rec = doJSON(t, s, http.MethodPost, "/farmer/create", map[string]string{
		"name": "Asha", "mobile_no": "9000000001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	deps.social.err = db.ErrNotOwner
	rec = doJSON(t, s, http.MethodDelete, "/posts/delete/post-1?user_id=other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	deps.farms.err = fmt.Errorf("connection reset")
	rec = doJSON(t, s, http.MethodGet, "/farmer/get/f1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details never leak to the client.
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestCropCreateRegistersLocationAndSubscribes(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.farm = &models.Farm{FarmID: "farm-1", FarmerID: "farmer-1"}
	deps.farms.crop = &models.Crop{CropID: "crop-1", FarmID: "farm-1", CropName: "Tomato"}

	rec := doJSON(t, s, http.MethodPost, "/crops/create", map[string]any{
		"farmer_id": "farmer-1", "farm_name": "North Field", "size": 2.5,
		"district": "Pune", "state": "Maharashtra",
		"crop_name": "Tomato", "planted_at": "2026-06-15",
		"fcm_token": "device-token-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, deps.farms.createdLocation)
	assert.Equal(t, "weather_alerts_pune_maharashtra", deps.farms.createdLocation.FirebaseTopic)
	assert.Equal(t, "weather_alerts_pune_maharashtra", deps.subscriber.tokens["device-token-1"])
}

func TestCropCreateExistingLocation(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.farm = &models.Farm{FarmID: "farm-1"}
	deps.farms.crop = &models.Crop{CropID: "crop-1"}
	deps.farms.locations["Pune|Maharashtra"] = &models.Location{
		District: "Pune", State: "Maharashtra", FirebaseTopic: "existing_topic",
	}

	rec := doJSON(t, s, http.MethodPost, "/crops/create", map[string]any{
		"farmer_id": "farmer-1", "farm_name": "North Field",
		"district": "Pune", "state": "Maharashtra",
		"crop_name": "Tomato", "fcm_token": "tok",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, deps.farms.createdLocation)
	assert.Equal(t, "existing_topic", deps.subscriber.tokens["tok"])
}

func TestCropCreateBadDate(t *testing.T) {
	s, _ := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/crops/create", map[string]any{
		"farmer_id": "farmer-1", "farm_name": "North Field",
		"crop_name": "Tomato", "planted_at": "15-06-2026",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarketQueryParams(t *testing.T) {
	s, deps := newTestServer()
	deps.market.records = []models.MarketRecord{{Commodity: "Tomato", ModalPrice: "1500"}}

	rec := doJSON(t, s, http.MethodGet,
		"/market/get?state=Karnataka&commodity=Tomato&limit=5&language=hi", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Karnataka", deps.market.last.State)
	assert.Equal(t, "Tomato", deps.market.last.Commodity)
	assert.Equal(t, 5, deps.market.last.Limit)
	assert.Equal(t, "hi", deps.market.last.Language)
	assert.Contains(t, rec.Body.String(), "1500")
}

func TestWeatherPerFarm(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.farmer = &models.Farmer{FarmerID: "farmer-1", Name: "Asha", Language: "hi"}
	deps.farms.farms = []models.Farm{
		{FarmName: "river plot", District: "Pune", State: "Maharashtra"},
		{FarmName: "hill plot", District: "Nashik", State: "Maharashtra"},
	}
	deps.weather.report = models.FarmWeather{District: "Pune"}

	rec := doJSON(t, s, http.MethodGet, "/weather/get", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/weather/get?farmer_id=farmer-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"river plot"`)
	assert.Contains(t, rec.Body.String(), `"hill plot"`)
	assert.Equal(t, []string{"Pune", "Nashik"}, deps.weather.districts)
	assert.Equal(t, "hi", deps.weather.lastLanguage)
}

func TestFarmerUpdateFields(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.farmer = &models.Farmer{FarmerID: "farmer-1", Name: "Asha"}

	rec := doJSON(t, s, http.MethodPost, "/farmer/update", map[string]string{
		"farmer_id": "farmer-1",
		"mobile_no": "9000000002",
		"language":  "hi",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, deps.farms.lastUpdate.MobileNo)
	assert.Equal(t, "9000000002", *deps.farms.lastUpdate.MobileNo)
	require.NotNil(t, deps.farms.lastUpdate.Language)
	assert.Equal(t, "hi", *deps.farms.lastUpdate.Language)
	assert.Nil(t, deps.farms.lastUpdate.Name)
}

func TestWeatherUnknownFarmer(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.err = db.ErrNotFound

	rec := doJSON(t, s, http.MethodGet, "/weather/get?farmer_id=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWeatherNoFarms(t *testing.T) {
	s, deps := newTestServer()
	deps.farms.farmer = &models.Farmer{FarmerID: "farmer-1", Language: "en"}

	rec := doJSON(t, s, http.MethodGet, "/weather/get?farmer_id=farmer-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, deps.weather.districts)
}

func TestPostLifecycleRoutes(t *testing.T) {
	s, deps := newTestServer()
	deps.social.post = &models.Post{PostID: "post-1", UserID: "farmer-1"}
	deps.social.posts = []models.Post{{PostID: "post-1"}}
	deps.social.comment = &models.Comment{CommentID: "c-1", PostID: "post-1"}

	rec := doJSON(t, s, http.MethodPost, "/posts/create", map[string]string{
		"user_id": "farmer-1", "content_desc": "my tomato harvest",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/posts/feed", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/posts/like/post-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post-1", deps.social.likedID)

	rec = doJSON(t, s, http.MethodPost, "/comments/create", map[string]string{
		"post_id": "post-1", "user_id": "farmer-2", "content": "looks great",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/posts/delete/post-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "delete without user_id is rejected")
}

func TestMediaRedirect(t *testing.T) {
	s, deps := newTestServer()
	id, err := deps.media.Put(context.Background(), "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodGet, "/media/"+id, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "memory://"+id, rec.Header().Get("Location"))

	rec = doJSON(t, s, http.MethodGet, "/media/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEmptyWithoutCollector(t *testing.T) {
	s, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", strings.TrimSpace(rec.Body.String()))
}
