package dto

// WeatherResponse mirrors the subset of the current-weather API body the bot
// reads: wind speed plus the temperature and humidity block.
type WeatherResponse struct {
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Main struct {
		TempMax  float64 `json:"temp_max"`
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}
