package actor

import (
	"fmt"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
	"github.com/Rob-Negrete/dura-gas/internal/core/port"
	"github.com/Rob-Negrete/dura-gas/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

// StorageActor serializes access to the state store. Load/save calls
// run as background tasks so the blocking database IO never stalls the
// actor system; incoming messages are stashed meanwhile.
type StorageActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	store    port.StateStore
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewStorageActor(store port.StateStore, log *zap.Logger) *StorageActor {
	act := &StorageActor{
		store:    store,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_STORAGE, log),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *StorageActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *StorageActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("storage@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_STORAGE,
			Healthy: true,
			State:   "idle",
		})
	case domain.LoadTankDataRequest:
		state.logger.Debug("storage@default: LoadTankDataRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.loadTankData),
			mapTaskResult[domain.LoadTankDataResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.LoadTankDataResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(5 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingStore)
	case domain.SaveTankDataRequest:
		state.logger.Debug("storage@default: SaveTankDataRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		data := msg.Data

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.SaveTankDataResponse {
			a := state.saveTankData(data)
			return &a
		}),
			mapTaskResult[domain.SaveTankDataResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.SaveTankDataResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(5 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingStore)
	case *actor.Stopping:
		if err := state.store.Close(); err != nil {
			state.logger.Error("could not close state store", zap.Error(err))
		}
	default:
		state.logger.Debug("storage@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *StorageActor) WaitingStore(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("storage@waitingStore backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		if err := state.store.Close(); err != nil {
			state.logger.Error("could not close state store", zap.Error(err))
		}
	default:
		state.logger.Debug("storage@waitingStore stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *StorageActor) loadTankData() (*domain.LoadTankDataResponse, error) {
	data, err := a.store.Load()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.LoadTankDataResponse{
		Data: data,
	}, nil
}

func (a *StorageActor) saveTankData(data domain.TankData) domain.SaveTankDataResponse {
	if err := a.store.Save(data); err != nil {
		logger.Error(err)
		return domain.SaveTankDataResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	}
	return domain.SaveTankDataResponse{}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
