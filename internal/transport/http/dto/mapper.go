package dto

import (
	"github.com/baechuer/city-population-api/internal/application/city"
	"github.com/baechuer/city-population-api/internal/domain"
)

func ToUpsertCityResp(res *city.UpsertResult) UpsertCityResp {
	return UpsertCityResp{
		Message:    "City " + res.Operation.Past() + " successfully",
		City:       res.City,
		Population: res.Population,
		Operation:  string(res.Operation),
	}
}

func ToCityResp(c *domain.City) CityResp {
	return CityResp{City: c.Name, Population: c.Population}
}

func ToListCitiesResp(res *city.ListResult) ListCitiesResp {
	out := make([]CityResp, 0, len(res.Cities))
	for i := range res.Cities {
		out = append(out, ToCityResp(&res.Cities[i]))
	}
	return ListCitiesResp{Count: len(out), Cities: out}
}

func ToHealthResp(h domain.HealthReport) HealthResp {
	db := "connected"
	if !h.StoreReachable {
		db = "disconnected"
	}
	return HealthResp{Status: string(h.Status), Database: db}
}
