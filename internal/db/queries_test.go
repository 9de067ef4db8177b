package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *db.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := db.NewClient(ctx, getTestConfig(), nil)
	require.NoError(t, err, "should connect to SurrealDB")
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	require.NoError(t, client.InitSchema(ctx))
	return client
}

func uniqueMobile() string {
	return fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000)
}

func TestFarmerLifecycle(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	farmer, err := client.CreateFarmer(ctx, "Ravi Kumar", uniqueMobile(), "hi")
	require.NoError(t, err)
	require.NotEmpty(t, farmer.FarmerID)
	assert.Equal(t, "hi", farmer.Language)

	state := "Maharashtra"
	district := "Nashik"
	updated, err := client.UpdateFarmer(ctx, farmer.FarmerID, db.FarmerUpdate{
		State:    &state,
		District: &district,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.State)
	assert.Equal(t, "Maharashtra", *updated.State)
	assert.Equal(t, farmer.Name, updated.Name, "unset fields stay unchanged")

	_, err = client.GetFarmer(ctx, "no-such-farmer")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestFarmAndCrop(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	farmer, err := client.CreateFarmer(ctx, "Lakshmi Devi", uniqueMobile(), "te")
	require.NoError(t, err)

	farm, err := client.CreateFarm(ctx, farmer.FarmerID, "river plot", 2.5, "Guntur", "Andhra Pradesh")
	require.NoError(t, err)
	assert.Equal(t, farmer.FarmerID, farm.FarmerID)

	crop, err := client.CreateCrop(ctx, farm.FarmID, "chilli", "teja", "red chilli for export",
		time.Now().AddDate(0, -2, 0), "cotton", "12 quintals")
	require.NoError(t, err)
	assert.Equal(t, farm.FarmID, crop.FarmID)

	crops, err := client.GetCropsByFarmer(ctx, farmer.FarmerID)
	require.NoError(t, err)
	require.Len(t, crops, 1)
	assert.Equal(t, "chilli", crops[0].CropName)

	farms, err := client.GetFarms(ctx, farmer.FarmerID)
	require.NoError(t, err)
	assert.Len(t, farms, 1)
}

func TestLocationRegistration(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	district := fmt.Sprintf("Testpur-%d", time.Now().UnixNano())
	state := "Karnataka"

	_, err := client.GetLocation(ctx, district, state)
	require.ErrorIs(t, err, db.ErrNotFound)

	topic := fmt.Sprintf("weather_alerts_%s_%s", district, state)
	loc, err := client.CreateLocation(ctx, district, state, topic)
	require.NoError(t, err)
	assert.Equal(t, topic, loc.FirebaseTopic)

	found, err := client.GetLocation(ctx, district, state)
	require.NoError(t, err)
	assert.Equal(t, loc.LocationID, found.LocationID)
}

func TestPostOwnership(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	post, err := client.CreatePost(ctx, "farmer-a", "https://example.com/1.jpg", "wheat rust?")
	require.NoError(t, err)

	require.NoError(t, client.LikePost(ctx, post.PostID))
	assert.ErrorIs(t, client.LikePost(ctx, "no-such-post"), db.ErrNotFound)

	// Another user cannot delete it
	err = client.DeletePost(ctx, post.PostID, "farmer-b")
	assert.ErrorIs(t, err, db.ErrNotOwner)

	require.NoError(t, client.DeletePost(ctx, post.PostID, "farmer-a"))
	assert.ErrorIs(t, client.DeletePost(ctx, post.PostID, "farmer-a"), db.ErrNotFound)
}

func TestCommentsRequireExistingPost(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	_, err := client.CreateComment(ctx, "no-such-post", "farmer-a", "nice field")
	assert.ErrorIs(t, err, db.ErrNotFound)

	post, err := client.CreatePost(ctx, "farmer-a", "https://example.com/2.jpg", "paddy harvest")
	require.NoError(t, err)

	comment, err := client.CreateComment(ctx, post.PostID, "farmer-b", "great yield!")
	require.NoError(t, err)

	comments, err := client.CommentsForPost(ctx, post.PostID, 50, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	assert.ErrorIs(t, client.DeleteComment(ctx, comment.CommentID, "farmer-a"), db.ErrNotOwner)
	require.NoError(t, client.DeleteComment(ctx, comment.CommentID, "farmer-b"))
}
