package domain

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_STORAGE      = "storage"
	ACTOR_ID_MONITOR      = "monitor"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

// Storage actor protocol

type LoadTankDataRequest struct {
	ActorRequestMixIn
}

type LoadTankDataResponse struct {
	ActorResponseMixIn
	// Data is nil on first run (nothing stored yet).
	Data *TankData
}

type SaveTankDataRequest struct {
	ActorRequestMixIn
	Data TankData
}

type SaveTankDataResponse struct {
	ActorResponseMixIn
}

// Monitor actor protocol

type RefreshRequest struct {
	ActorRequestMixIn
}

type RefreshResponse struct {
	ActorResponseMixIn
	Snapshot *Snapshot
}

type GetSnapshotRequest struct {
	ActorRequestMixIn
}

type GetSnapshotResponse struct {
	ActorResponseMixIn
	// Snapshot is the last known good snapshot, nil before the first
	// successful refresh.
	Snapshot *Snapshot
}

// MQTT actor protocol

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors      []GenericSensor
	Selects      []GenericSelect
	InputNumbers []GenericInputNumber
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// Health check

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
