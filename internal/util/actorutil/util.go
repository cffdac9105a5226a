package actorutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
	"github.com/Rob-Negrete/dura-gas/internal/core/events"
	"github.com/Rob-Negrete/dura-gas/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {

		// create a new logger
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand validates the payload against the entity's
// range and maps it to a tank command. A nil request with a nil error
// means the command targets an unknown entity and should be ignored.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.Command {
	case mqtt.COMMAND_TYPE_REFILL:
		return parseRefillCommand(cmd.Payload)
	case mqtt.COMMAND_TYPE_SELECT:
		return parseSelectCommand(cmd.DeviceId, cmd.Payload)
	case mqtt.COMMAND_TYPE_NUMBER:
		return parseNumberCommand(cmd.DeviceId, cmd.Payload)
	}
	return nil, nil
}

func parseRefillCommand(payload string) (domain.ActorRequest, error) {
	var refill mqtt.RefillCommand
	if err := json.Unmarshal([]byte(payload), &refill); err != nil {
		return nil, err
	}
	if refill.Liters < 0 || refill.Liters > 200 {
		return nil, fmt.Errorf("refill liters out of range: %f", refill.Liters)
	}
	if refill.PricePerLiter < 8 || refill.PricePerLiter > 20 {
		return nil, fmt.Errorf("refill price out of range: %f", refill.PricePerLiter)
	}
	var date time.Time
	if refill.Date != "" {
		parsed, err := time.Parse(time.RFC3339, refill.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}
	return domain.RecordRefillRequest{
		Liters:        refill.Liters,
		PricePerLiter: refill.PricePerLiter,
		Date:          date,
	}, nil
}

func parseSelectCommand(deviceId, payload string) (domain.ActorRequest, error) {
	switch deviceId {
	case events.SELECT_ID_HEATING_MODE:
		mode, err := domain.ParseHeatingMode(payload)
		if err != nil {
			return nil, err
		}
		return domain.SetHeatingModeRequest{Mode: mode}, nil
	case events.SELECT_ID_REFILL_STRATEGY:
		strategy, err := domain.ParseRefillStrategy(payload)
		if err != nil {
			return nil, err
		}
		return domain.SetStrategyRequest{Strategy: strategy}, nil
	}
	return nil, nil
}

func parseNumberCommand(deviceId, payload string) (domain.ActorRequest, error) {
	value, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return nil, err
	}
	switch deviceId {
	case events.INPUT_NUMBER_ID_TANK_LEVEL:
		if value < 0 || value > 100 {
			return nil, fmt.Errorf("tank level out of range: %f", value)
		}
		return domain.UpdateLevelRequest{LevelPercent: value}, nil
	case events.INPUT_NUMBER_ID_GAS_PRICE:
		if value < 8 || value > 20 {
			return nil, fmt.Errorf("gas price out of range: %f", value)
		}
		return domain.UpdatePriceRequest{PricePerLiter: value}, nil
	case events.INPUT_NUMBER_ID_CUSTOM_AMOUNT:
		if value < 100 || value > 2000 {
			return nil, fmt.Errorf("custom amount out of range: %f", value)
		}
		return domain.SetCustomAmountRequest{Amount: value}, nil
	}
	return nil, nil
}
