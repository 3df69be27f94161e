package application

import (
	"context"

	"weather-mcp-server/internal/domain"
	"weather-mcp-server/internal/infrastructure"
)

// Tool name constants for the weather tool set. get_weather_history is
// premium-gated upstream and deliberately has no entry here.
const (
	ToolGetCurrentWeather    = "get_current_weather"
	ToolGetWeatherForecast   = "get_weather_forecast"
	ToolGetWeatherAirQuality = "get_weather_airquality"
	ToolGetAstronomyData     = "get_astronomy_data"
	ToolSearchLocations      = "search_locations"
	ToolGetTimezone          = "get_timezone"
	ToolGetSportEvents       = "get_sport_events"
)

// BuildWeatherHandlers binds each tool name to its WeatherClient call.
// The handlers assume their arguments already passed input schema
// validation; the dispatcher guarantees that.
func BuildWeatherHandlers(client *infrastructure.WeatherClient) map[string]domain.HandlerFunc {
	return map[string]domain.HandlerFunc{
		ToolGetCurrentWeather: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.Current(ctx, stringArg(args, "query"), boolArg(args, "include_air_quality"))
		},
		ToolGetWeatherForecast: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.Forecast(ctx,
				stringArg(args, "query"),
				intArg(args, "days", 1),
				boolArg(args, "include_air_quality"),
				boolArg(args, "include_alerts"))
		},
		ToolGetWeatherAirQuality: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.AirQuality(ctx, stringArg(args, "query"))
		},
		ToolGetAstronomyData: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.Astronomy(ctx, stringArg(args, "query"), stringArg(args, "date"))
		},
		ToolSearchLocations: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.SearchLocations(ctx, stringArg(args, "query"))
		},
		ToolGetTimezone: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.Timezone(ctx, stringArg(args, "query"))
		},
		ToolGetSportEvents: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			return client.SportEvents(ctx, stringArg(args, "query"))
		},
	}
}

// stringArg reads a validated string argument. Absent optional strings
// read as "".
func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// boolArg reads a validated boolean argument, defaulting to false.
func boolArg(args map[string]interface{}, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// intArg reads a validated integer argument, tolerating the float64
// representation JSON decoding produces.
func intArg(args map[string]interface{}, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}
