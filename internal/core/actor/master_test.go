package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "github.com/Rob-Negrete/dura-gas/internal/adapter/actor"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
	"github.com/Rob-Negrete/dura-gas/internal/storage"
	"github.com/Rob-Negrete/dura-gas/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.StorageActor {
			return adactor.NewStorageActor(storage.NewMemoryStore(), logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	// snapshot requests are routed to the monitor
	res, err = context.RequestFuture(pid, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	snapResp, ok := res.(domain.GetSnapshotResponse)
	assert.True(t, ok)
	assert.NotNil(t, snapResp.Snapshot)

	// on-demand refresh is routed to the monitor and yields a snapshot
	res, err = context.RequestFuture(pid, domain.RefreshRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	refreshResp, ok := res.(domain.RefreshResponse)
	assert.True(t, ok)
	assert.NotNil(t, refreshResp.Snapshot)

	context.Stop(pid)

	as.Shutdown()
}
