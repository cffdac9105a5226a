package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/Rob-Negrete/dura-gas/internal/adapter/actor"
	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/actor"
	"github.com/Rob-Negrete/dura-gas/internal/server"
	"github.com/Rob-Negrete/dura-gas/internal/storage"
	"github.com/Rob-Negrete/dura-gas/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// init Storage actor provider
	storageProv, err := storageActorProvider(cfg, logger)
	if err != nil {
		panic(err)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, storageProv, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => DURAGAS_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("DURAGAS_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("duragas")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if err := config.CheckTankSize(cfg.TankConfig.Size); err != nil {
		return nil, err
	}
	if cfg.TankConfig.Size == "custom" && cfg.TankConfig.CapacityCustom <= 0 {
		return nil, errors.New("config param tank.capacity_custom should be > 0 when tank.size is custom")
	}
	if cfg.TankConfig.UsablePercent <= 0 || cfg.TankConfig.UsablePercent > 100 {
		return nil, errors.New("config param tank.usable_percentage should be in (0, 100]")
	}
	if cfg.TankConfig.InitialLevel < 0 || cfg.TankConfig.InitialLevel > 100 {
		return nil, errors.New("config param tank.initial_level should be in [0, 100]")
	}
	if cfg.TankConfig.PricePerLiter <= 0 {
		return nil, errors.New("config param tank.price_per_liter should be > 0")
	}
	if cfg.TankConfig.RefillThreshold < cfg.TankConfig.LowThreshold {
		return nil, errors.New("config param tank.refill_threshold should be >= tank.low_threshold")
	}
	if cfg.SolarConfig.Enable {
		if cfg.SolarConfig.Efficiency < 0 || cfg.SolarConfig.Efficiency > 100 {
			return nil, errors.New("config param solar.efficiency should be in [0, 100]")
		}
		if cfg.SolarConfig.Investment < 0 {
			return nil, errors.New("config param solar.investment should be >= 0")
		}
	}
	if cfg.MonitorConfig.RefreshIntervalMillis < 1000 {
		return nil, errors.New("config param monitor.refresh_interval_millis should be >= 1000")
	}
	if cfg.StorageConfig.Path == "" {
		return nil, errors.New("config param storage.path should not be empty")
	}

	return &cfg, nil
}

func storageActorProvider(cfg *config.Config, logger *zap.Logger) (actor.StorageActorProvider, error) {

	store, err := storage.NewSQLiteStore(cfg.StorageConfig.Path)
	if err != nil {
		return nil, err
	}

	return func() *adactor.StorageActor {
		return adactor.NewStorageActor(store, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(_ *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "duragas")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("tank.size", "120")
	viper.SetDefault("tank.usable_percentage", 80)
	viper.SetDefault("tank.initial_level", 50)
	viper.SetDefault("tank.price_per_liter", 10.88)
	viper.SetDefault("tank.low_threshold", 20)
	viper.SetDefault("tank.refill_threshold", 30)
	viper.SetDefault("solar.enable", false)
	viper.SetDefault("solar.efficiency", 70)
	viper.SetDefault("monitor.refresh_interval_millis", 300000)
	viper.SetDefault("storage.path", "duragas.db")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
