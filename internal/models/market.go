package models

// MarketQuery filters a mandi-price lookup. Empty string fields are
// omitted from the upstream request.
type MarketQuery struct {
	State     string `json:"state"`
	District  string `json:"district"`
	Market    string `json:"market"`
	Commodity string `json:"commodity"`
	Variety   string `json:"variety"`
	Grade     string `json:"grade"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	Language  string `json:"language"`
}

// MarketRecord is one commodity price row from the open government data
// API. Only the human-readable string fields are translation candidates;
// prices and dates pass through untouched.
type MarketRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	Grade       string `json:"grade"`
	ArrivalDate string `json:"arrival_date"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
}
