package actor

import (
	"fmt"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
	"github.com/Rob-Negrete/dura-gas/internal/core/events"
	"github.com/Rob-Negrete/dura-gas/internal/core/service"
	. "github.com/Rob-Negrete/dura-gas/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// TankMonitorActor owns the tank state. It loads it from storage on
// start, recomputes the snapshot on a timer and on every command, and
// publishes sensor updates to the event stream. Storage writes go
// through the storage actor; a failed save is logged but does not lose
// the in-memory state.
type TankMonitorActor struct {
	ActorWithStates
	scheduler *scheduler.TimerScheduler
	stash     *Stash

	storageActor *actor.PID
	config       *config.Config
	engine       *service.TankEngine
	eventStream  *eventstream.EventStream

	data         domain.TankData
	lastSnapshot *domain.Snapshot

	logger *zap.Logger
}

type monitorTick struct {
}

func NewTankMonitorActor(config *config.Config, storageActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *TankMonitorActor {
	act := &TankMonitorActor{
		config:       config,
		storageActor: storageActor,
		stash:        &Stash{},
		engine:       service.NewTankEngine(config, logger),
		eventStream:  eventStream,
		logger:       ActorLogger(domain.ACTOR_ID_MONITOR, logger),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(TMStartingState{
		actor: act,
	})
	return act
}

func (state *TankMonitorActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Starting state

type TMStartingState struct {
	ActorState
	actor *TankMonitorActor
}

func (state TMStartingState) Name() string {
	return "starting"
}

func (state TMStartingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("monitor@starting started")

		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.storageActor, domain.LoadTankDataRequest{}, 5*time.Second), func(err error) any {
			return domain.LoadTankDataResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.actor.Become(TMWaitingLoadState{
			actor: state.actor,
		})
	case *actor.Restarting:
	default:
		state.actor.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Waiting load state

type TMWaitingLoadState struct {
	ActorState
	actor *TankMonitorActor
}

func (state TMWaitingLoadState) Name() string {
	return "loading"
}

func (state TMWaitingLoadState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.LoadTankDataResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("monitor@loading could not load tank state", zap.Error(msg.GetResponseError()))
			panic(msg.GetResponseError())
		}
		if msg.Data != nil {
			state.actor.logger.Info("monitor@loading restored tank state",
				zap.Float64("current_level", msg.Data.CurrentLevel),
				zap.Int("refill_history", len(msg.Data.RefillHistory)))
			state.actor.data = *msg.Data
		} else {
			state.actor.data = state.actor.engine.DefaultTankData()
			state.actor.logger.Info("monitor@loading first run, starting with defaults",
				zap.Float64("current_level", state.actor.data.CurrentLevel))
			state.actor.saveData(ctx)
		}

		state.actor.refreshAndPublish(ctx)
		state.actor.scheduleTick(ctx)
		state.actor.Become(TMIdleState{
			actor: state.actor,
		})
		state.actor.stash.UnstashAll(ctx)
	default:
		state.actor.logger.Debug("monitor@loading: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Idle state

type TMIdleState struct {
	ActorState
	actor *TankMonitorActor
}

func (state TMIdleState) Name() string {
	return "idle"
}

func (state TMIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.logger.Debug("monitor@idle: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   state.Name(),
		})
	case monitorTick:
		state.actor.logger.Debug("monitor@idle tick")
		state.actor.refreshAndPublish(ctx)
		state.actor.scheduleTick(ctx)
	case domain.RefreshRequest:
		state.actor.logger.Debug("monitor@idle: RefreshRequest")
		snapshot := state.actor.refreshAndPublish(ctx)
		ForRequest(msg).Respond(ctx, domain.RefreshResponse{
			Snapshot: snapshot,
		})
	case domain.GetSnapshotRequest:
		state.actor.logger.Debug("monitor@idle: GetSnapshotRequest")
		ForRequest(msg).Respond(ctx, domain.GetSnapshotResponse{
			Snapshot: state.actor.lastSnapshot,
		})
	case domain.RecordRefillRequest:
		state.actor.logger.Debug("monitor@idle: RecordRefillRequest")
		date := msg.Date
		if date.IsZero() {
			date = time.Now()
		}
		record := state.actor.engine.ApplyRefill(&state.actor.data, msg.Liters, msg.PricePerLiter, date)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.RecordRefillResponse{
			Record: record,
		})
	case domain.UpdateLevelRequest:
		state.actor.logger.Debug("monitor@idle: UpdateLevelRequest")
		level := state.actor.engine.ApplyLevel(&state.actor.data, msg.LevelPercent)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.UpdateLevelResponse{
			LevelPercent: level,
		})
	case domain.UpdatePriceRequest:
		state.actor.logger.Debug("monitor@idle: UpdatePriceRequest")
		state.actor.engine.ApplyPrice(&state.actor.data, msg.PricePerLiter)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.UpdatePriceResponse{
			PricePerLiter: msg.PricePerLiter,
		})
	case domain.SetHeatingModeRequest:
		state.actor.logger.Debug("monitor@idle: SetHeatingModeRequest")
		state.actor.engine.ApplyHeatingMode(&state.actor.data, msg.Mode)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.SetHeatingModeResponse{
			Mode: msg.Mode,
		})
	case domain.SetStrategyRequest:
		state.actor.logger.Debug("monitor@idle: SetStrategyRequest")
		state.actor.engine.ApplyStrategy(&state.actor.data, msg.Strategy, msg.CustomAmount)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.SetStrategyResponse{
			Strategy: msg.Strategy,
		})
	case domain.SetCustomAmountRequest:
		state.actor.logger.Debug("monitor@idle: SetCustomAmountRequest")
		state.actor.engine.ApplyCustomAmount(&state.actor.data, msg.Amount)
		state.actor.commandApplied(ctx)
		ForRequest(msg).Respond(ctx, domain.SetCustomAmountResponse{
			Amount: msg.Amount,
		})
	case domain.SaveTankDataResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("monitor@idle could not save tank state", zap.Error(msg.GetResponseError()))
		}
	default:
		state.actor.logger.Debug("monitor@idle: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *TankMonitorActor) scheduleTick(ctx actor.Context) {
	if state.config.MonitorConfig.RefreshIntervalMillis > 0 {
		state.scheduler.RequestOnce(time.Duration(state.config.MonitorConfig.RefreshIntervalMillis)*time.Millisecond, ctx.Self(), monitorTick{})
	}
}

// commandApplied persists the mutated state and pushes fresh sensor
// values so HA reflects the change immediately.
func (state *TankMonitorActor) commandApplied(ctx actor.Context) {
	state.saveData(ctx)
	state.refreshAndPublish(ctx)
}

func (state *TankMonitorActor) refreshAndPublish(ctx actor.Context) *domain.Snapshot {
	snapshot, dirty := state.engine.Refresh(&state.data, time.Now())
	state.lastSnapshot = &snapshot
	if dirty {
		state.saveData(ctx)
	}

	price := state.engine.EffectivePrice(&state.data)
	for _, ev := range events.SnapshotToUpdateEvents(snapshot, state.data, price, state.config.TankConfig, state.config.SolarConfig) {
		state.eventStream.Publish(ev)
	}
	return &snapshot
}

func (state *TankMonitorActor) saveData(ctx actor.Context) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.storageActor, domain.SaveTankDataRequest{
		Data: state.data,
	}, 5*time.Second), func(err error) any {
		return domain.SaveTankDataResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}
