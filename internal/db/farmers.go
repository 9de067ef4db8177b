package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krishi-ai/krishi-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateFarmer inserts a new farmer with a generated farmer_id.
func (c *Client) CreateFarmer(ctx context.Context, name, mobileNo, language string) (*models.Farmer, error) {
	results, err := queryTimed[[]models.Farmer](ctx, c, `
		CREATE farmer CONTENT {
			farmer_id: $farmer_id,
			name: $name,
			mobile_no: $mobile_no,
			language: $language
		}
	`, map[string]any{
		"farmer_id": uuid.NewString(),
		"name":      name,
		"mobile_no": mobileNo,
		"language":  language,
	})
	if err != nil {
		return nil, fmt.Errorf("create farmer: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// FarmerUpdate carries the optional fields of a farmer update. Nil fields
// are left unchanged.
type FarmerUpdate struct {
	Name     *string
	MobileNo *string
	Language *string
	State    *string
	District *string
}

// UpdateFarmer applies a partial update keyed by farmer_id.
func (c *Client) UpdateFarmer(ctx context.Context, farmerID string, upd FarmerUpdate) (*models.Farmer, error) {
	set := map[string]any{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.MobileNo != nil {
		set["mobile_no"] = *upd.MobileNo
	}
	if upd.Language != nil {
		set["language"] = *upd.Language
	}
	if upd.State != nil {
		set["state"] = *upd.State
	}
	if upd.District != nil {
		set["district"] = *upd.District
	}
	if len(set) == 0 {
		return c.GetFarmer(ctx, farmerID)
	}

	results, err := queryTimed[[]models.Farmer](ctx, c, `
		UPDATE farmer MERGE $fields WHERE farmer_id = $farmer_id
	`, map[string]any{"farmer_id": farmerID, "fields": set})
	if err != nil {
		return nil, fmt.Errorf("update farmer: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// GetFarmer fetches a farmer by farmer_id.
func (c *Client) GetFarmer(ctx context.Context, farmerID string) (*models.Farmer, error) {
	results, err := queryTimed[[]models.Farmer](ctx, c, `
		SELECT * FROM farmer WHERE farmer_id = $farmer_id
	`, map[string]any{"farmer_id": farmerID})
	if err != nil {
		return nil, fmt.Errorf("get farmer: %w", err)
	}
	return firstRow(results)
}

// CreateFarm inserts a farm for a farmer.
func (c *Client) CreateFarm(ctx context.Context, farmerID, name string, size float64, district, state string) (*models.Farm, error) {
	results, err := queryTimed[[]models.Farm](ctx, c, `
		CREATE farm CONTENT {
			farm_id: $farm_id,
			farmer_id: $farmer_id,
			farm_name: $farm_name,
			size: $size,
			district: $district,
			state: $state
		}
	`, map[string]any{
		"farm_id":   uuid.NewString(),
		"farmer_id": farmerID,
		"farm_name": name,
		"size":      size,
		"district":  district,
		"state":     state,
	})
	if err != nil {
		return nil, fmt.Errorf("create farm: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// GetFarms lists all farms owned by a farmer.
func (c *Client) GetFarms(ctx context.Context, farmerID string) ([]models.Farm, error) {
	results, err := queryTimed[[]models.Farm](ctx, c, `
		SELECT * FROM farm WHERE farmer_id = $farmer_id ORDER BY created_at ASC
	`, map[string]any{"farmer_id": farmerID})
	if err != nil {
		return nil, fmt.Errorf("get farms: %w", err)
	}
	return allRows(results), nil
}

// GetLocation fetches the location record for a district/state pair.
// Returns ErrNotFound when the pair has not been registered.
func (c *Client) GetLocation(ctx context.Context, district, state string) (*models.Location, error) {
	results, err := queryTimed[[]models.Location](ctx, c, `
		SELECT * FROM location WHERE district = $district AND state = $state
	`, map[string]any{"district": district, "state": state})
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return firstRow(results)
}

// CreateLocation registers a district/state pair with its alert topic.
func (c *Client) CreateLocation(ctx context.Context, district, state, topic string) (*models.Location, error) {
	results, err := queryTimed[[]models.Location](ctx, c, `
		CREATE location CONTENT {
			location_id: $location_id,
			district: $district,
			state: $state,
			firebase_topic: $topic
		}
	`, map[string]any{
		"location_id": uuid.NewString(),
		"district":    district,
		"state":       state,
		"topic":       topic,
	})
	if err != nil {
		return nil, fmt.Errorf("create location: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// AllLocations lists every registered alert location.
func (c *Client) AllLocations(ctx context.Context) ([]models.Location, error) {
	results, err := queryTimed[[]models.Location](ctx, c, `
		SELECT * FROM location
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("all locations: %w", err)
	}
	return allRows(results), nil
}

// CreateCrop inserts a planting record on a farm.
func (c *Client) CreateCrop(ctx context.Context, farmID, name, variety, description string, plantedAt time.Time, previousCrop, previousYield string) (*models.Crop, error) {
	results, err := queryTimed[[]models.Crop](ctx, c, `
		CREATE crop CONTENT {
			crop_id: $crop_id,
			farm_id: $farm_id,
			crop_name: $crop_name,
			crop_variety: $crop_variety,
			description: $description,
			planted_at: $planted_at,
			previous_crop: $previous_crop,
			previous_crop_yield: $previous_crop_yield
		}
	`, map[string]any{
		"crop_id":             uuid.NewString(),
		"farm_id":             farmID,
		"crop_name":           name,
		"crop_variety":        variety,
		"description":         description,
		"planted_at":          plantedAt,
		"previous_crop":       previousCrop,
		"previous_crop_yield": previousYield,
	})
	if err != nil {
		return nil, fmt.Errorf("create crop: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// GetCropsByFarmer lists crops across all of a farmer's farms.
func (c *Client) GetCropsByFarmer(ctx context.Context, farmerID string) ([]models.Crop, error) {
	results, err := queryTimed[[]models.Crop](ctx, c, `
		SELECT * FROM crop WHERE farm_id IN (
			SELECT VALUE farm_id FROM farm WHERE farmer_id = $farmer_id
		)
	`, map[string]any{"farmer_id": farmerID})
	if err != nil {
		return nil, fmt.Errorf("get crops: %w", err)
	}
	return allRows(results), nil
}

// firstRow extracts the first row of the first query result, mapping an
// empty result to ErrNotFound.
func firstRow[T any](results *[]surrealdb.QueryResult[[]T]) (*T, error) {
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// allRows extracts every row of the first query result.
func allRows[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return []T{}
	}
	return (*results)[0].Result
}
