package util

import (
	"github.com/Rob-Negrete/dura-gas/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "duragas",
		},
		TankConfig: config.TankConfig{
			Size:            "120",
			UsablePercent:   80,
			InitialLevel:    50,
			PricePerLiter:   10.88,
			LowThreshold:    20,
			RefillThreshold: 30,
		},
		SolarConfig: config.SolarConfig{
			Enable:     true,
			Investment: 25000,
			Efficiency: 70,
		},
		MonitorConfig: config.MonitorConfig{
			RefreshIntervalMillis: 300000,
		},
		StorageConfig: config.StorageConfig{
			Path: ":memory:",
		},
		Port: 8080,
	}
}
