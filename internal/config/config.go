package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	NetworkName string

	// Seeding parameters for the initial network.
	SideKm            float64
	StationCount      int
	SlotsPerStation   int
	BikeFill          float64
	PlusStationShare  float64
	ElectricBikeShare float64
	Seed              int64

	// When true, a return whose pricing fails undocks the bike again
	// instead of leaving it committed at the destination station.
	StrictReturns bool

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		NetworkName: getEnv("NETWORK_NAME", "myVelib"),

		SideKm:            getEnvFloat("NETWORK_SIDE_KM", 10),
		StationCount:      getEnvInt("STATION_COUNT", 10),
		SlotsPerStation:   getEnvInt("SLOTS_PER_STATION", 10),
		BikeFill:          getEnvFloat("BIKE_FILL", 0.75),
		PlusStationShare:  getEnvFloat("PLUS_STATION_SHARE", 0.3),
		ElectricBikeShare: getEnvFloat("ELECTRIC_BIKE_SHARE", 0.3),
		Seed:              int64(getEnvInt("SEED", 0)),

		StrictReturns: getEnvBool("STRICT_RETURNS", false),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
