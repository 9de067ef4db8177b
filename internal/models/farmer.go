package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Farmer is a registered user of the platform. FarmerID is the opaque
// identifier the conversational pipeline keys sessions on.
type Farmer struct {
	ID       surrealmodels.RecordID `json:"id"`
	FarmerID string                 `json:"farmer_id"`
	Name     string                 `json:"name"`
	MobileNo string                 `json:"mobile_no"`
	Language string                 `json:"language"`
	State    *string                `json:"state,omitempty"`
	District *string                `json:"district,omitempty"`
	Created  time.Time              `json:"created_at"`
}

// Farm is a plot of land owned by a farmer.
type Farm struct {
	ID       surrealmodels.RecordID `json:"id"`
	FarmID   string                 `json:"farm_id"`
	FarmerID string                 `json:"farmer_id"`
	FarmName string                 `json:"farm_name"`
	Size     float64                `json:"size"`
	State    string                 `json:"state"`
	District string                 `json:"district"`
	Created  time.Time              `json:"created_at"`
}

// Location is a unique district/state pair with its weather-alert topic.
type Location struct {
	ID            surrealmodels.RecordID `json:"id"`
	LocationID    string                 `json:"location_id"`
	District      string                 `json:"district"`
	State         string                 `json:"state"`
	FirebaseTopic string                 `json:"firebase_topic"`
}

// Crop is a planting record on a farm.
type Crop struct {
	ID                surrealmodels.RecordID `json:"id"`
	CropID            string                 `json:"crop_id"`
	FarmID            string                 `json:"farm_id"`
	CropName          string                 `json:"crop_name"`
	CropVariety       string                 `json:"crop_variety"`
	Description       string                 `json:"description"`
	PlantedAt         time.Time              `json:"planted_at"`
	PreviousCrop      string                 `json:"previous_crop"`
	PreviousCropYield string                 `json:"previous_crop_yield"`
}
