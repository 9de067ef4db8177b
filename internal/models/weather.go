package models

// WeatherCurrent is the reshaped current-conditions block returned to
// clients, a subset of the upstream weatherapi.com payload.
type WeatherCurrent struct {
	TempC      float64 `json:"temp_c"`
	TempF      float64 `json:"temp_f"`
	IsDay      int     `json:"is_day"`
	Condition  string  `json:"condition"`
	FeelslikeC float64 `json:"feelslike_c"`
	FeelslikeF float64 `json:"feelslike_f"`
	PrecipMM   float64 `json:"precip_mm"`
	PrecipIn   float64 `json:"precip_in"`
	DewpointC  float64 `json:"dewpoint_c"`
	DewpointF  float64 `json:"dewpoint_f"`
	Humidity   int     `json:"humidity"`
	Cloud      int     `json:"cloud"`
	VisKM      float64 `json:"vis_km"`
	VisMiles   float64 `json:"vis_miles"`
	UV         float64 `json:"uv"`
}

// WeatherDay is the reshaped per-day forecast block.
type WeatherDay struct {
	MaxtempC          float64 `json:"maxtemp_c"`
	MaxtempF          float64 `json:"maxtemp_f"`
	MintempC          float64 `json:"mintemp_c"`
	MintempF          float64 `json:"mintemp_f"`
	AvgtempC          float64 `json:"avgtemp_c"`
	AvgtempF          float64 `json:"avgtemp_f"`
	Condition         string  `json:"condition"`
	TotalprecipMM     float64 `json:"totalprecip_mm"`
	TotalprecipIn     float64 `json:"totalprecip_in"`
	MaxwindMPH        float64 `json:"maxwind_mph"`
	MaxwindKPH        float64 `json:"maxwind_kph"`
	AvgHumidity       float64 `json:"avghumidity"`
	DailyWillItRain   int     `json:"daily_will_it_rain"`
	DailyChanceOfRain int     `json:"daily_chance_of_rain"`
	DailyWillItSnow   int     `json:"daily_will_it_snow"`
	DailyChanceOfSnow int     `json:"daily_chance_of_snow"`
	UV                float64 `json:"uv"`
}

// WeatherAstro carries sunrise/sunset times for a forecast day.
type WeatherAstro struct {
	Sunrise  string `json:"sunrise"`
	Sunset   string `json:"sunset"`
	Moonrise string `json:"moonrise"`
	Moonset  string `json:"moonset"`
}

// WeatherForecastDay is one day of the five-day forecast.
type WeatherForecastDay struct {
	Date  string       `json:"date"`
	Day   WeatherDay   `json:"day"`
	Astro WeatherAstro `json:"astro"`
}

// FarmWeather is the full reshaped weather report for one farm.
type FarmWeather struct {
	District string               `json:"district"`
	State    string               `json:"state"`
	Country  string               `json:"country"`
	Current  WeatherCurrent       `json:"current"`
	Forecast []WeatherForecastDay `json:"forecast"`
}

// WeatherAlert is one upstream alert for a location.
type WeatherAlert struct {
	Headline string `json:"headline"`
	Event    string `json:"event"`
	Severity string `json:"severity"`
	Desc     string `json:"desc"`
}
