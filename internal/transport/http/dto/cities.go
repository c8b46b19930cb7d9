package dto

import "encoding/json"

// UpsertCityReq keeps population as a json.Number so fractional values can be
// rejected instead of silently truncated.
type UpsertCityReq struct {
	City       string      `json:"city" validate:"required"`
	Population json.Number `json:"population" validate:"required"`
}

type UpsertCityResp struct {
	Message    string `json:"message"`
	City       string `json:"city"`
	Population int64  `json:"population"`
	Operation  string `json:"operation"`
}

type CityResp struct {
	City       string `json:"city"`
	Population int64  `json:"population"`
}

type ListCitiesResp struct {
	Count  int        `json:"count"`
	Cities []CityResp `json:"cities"`
}

type HealthResp struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
