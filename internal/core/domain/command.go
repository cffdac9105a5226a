package domain

import (
	"fmt"
	"time"
)

// TankCommandRequest

type TankCommandRequest interface {
	ActorRequest
	TankCommand() string
}

type TankCommandRequestMixIn struct {
	ActorRequestMixIn
}

func (r TankCommandRequestMixIn) TankCommand() string {
	return fmt.Sprintf("%T", r)
}

// TankCommandResponse

type TankCommandResponse interface {
	ActorResponse
	TankCommandResponse() string
}

type TankCommandResponseMixIn struct {
	ActorResponseMixIn
}

func (r TankCommandResponseMixIn) TankCommandResponse() string {
	return fmt.Sprintf("%T", r)
}

// Tank commands. Input ranges are enforced at the command intake
// (MQTT parse layer); the monitor assumes values are in range.

type RecordRefillRequest struct {
	TankCommandRequestMixIn
	Liters        float64
	PricePerLiter float64
	// Date defaults to the current time when zero.
	Date time.Time
}

type RecordRefillResponse struct {
	TankCommandResponseMixIn
	Record RefillRecord
}

type UpdateLevelRequest struct {
	TankCommandRequestMixIn
	LevelPercent float64
}

type UpdateLevelResponse struct {
	TankCommandResponseMixIn
	LevelPercent float64
}

type UpdatePriceRequest struct {
	TankCommandRequestMixIn
	PricePerLiter float64
}

type UpdatePriceResponse struct {
	TankCommandResponseMixIn
	PricePerLiter float64
}

type SetHeatingModeRequest struct {
	TankCommandRequestMixIn
	Mode HeatingMode
}

type SetHeatingModeResponse struct {
	TankCommandResponseMixIn
	Mode HeatingMode
}

type SetStrategyRequest struct {
	TankCommandRequestMixIn
	Strategy RefillStrategy
	// CustomAmount is applied only when Strategy is custom.
	CustomAmount *float64
}

type SetStrategyResponse struct {
	TankCommandResponseMixIn
	Strategy RefillStrategy
}

type SetCustomAmountRequest struct {
	TankCommandRequestMixIn
	Amount float64
}

type SetCustomAmountResponse struct {
	TankCommandResponseMixIn
	Amount float64
}

// ensure interface compliance
var _ TankCommandRequest = (*RecordRefillRequest)(nil)
