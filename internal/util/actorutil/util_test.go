package actorutil

import (
	"testing"

	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
	"github.com/Rob-Negrete/dura-gas/internal/core/events"
	"github.com/Rob-Negrete/dura-gas/internal/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedMQTTCommandToCommandRefill(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command: mqtt.COMMAND_TYPE_REFILL,
		Payload: `{"liters": 50.56, "price_per_liter": 10.88}`,
	})
	require.NoError(t, err)
	refill, ok := req.(domain.RecordRefillRequest)
	require.True(t, ok)
	assert.Equal(t, 50.56, refill.Liters)
	assert.Equal(t, 10.88, refill.PricePerLiter)
	assert.True(t, refill.Date.IsZero())
}

func TestParsedMQTTCommandToCommandRefillZeroLiters(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command: mqtt.COMMAND_TYPE_REFILL,
		Payload: `{"liters": 0, "price_per_liter": 10.88}`,
	})
	require.NoError(t, err)
	refill, ok := req.(domain.RecordRefillRequest)
	require.True(t, ok)
	assert.Equal(t, 0.0, refill.Liters)
}

func TestParsedMQTTCommandToCommandRefillOutOfRange(t *testing.T) {
	_, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command: mqtt.COMMAND_TYPE_REFILL,
		Payload: `{"liters": -1, "price_per_liter": 10.88}`,
	})
	assert.Error(t, err)
	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command: mqtt.COMMAND_TYPE_REFILL,
		Payload: `{"liters": 500, "price_per_liter": 10.88}`,
	})
	assert.Error(t, err)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command: mqtt.COMMAND_TYPE_REFILL,
		Payload: `{"liters": 50, "price_per_liter": 45}`,
	})
	assert.Error(t, err)
}

func TestParsedMQTTCommandToCommandSelect(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command:  mqtt.COMMAND_TYPE_SELECT,
		DeviceId: events.SELECT_ID_REFILL_STRATEGY,
		Payload:  "level_60",
	})
	require.NoError(t, err)
	strategy, ok := req.(domain.SetStrategyRequest)
	require.True(t, ok)
	assert.Equal(t, domain.StrategyLevel60, strategy.Strategy)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command:  mqtt.COMMAND_TYPE_SELECT,
		DeviceId: events.SELECT_ID_REFILL_STRATEGY,
		Payload:  "bogus",
	})
	assert.Error(t, err)
}

func TestParsedMQTTCommandToCommandNumber(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command:  mqtt.COMMAND_TYPE_NUMBER,
		DeviceId: events.INPUT_NUMBER_ID_GAS_PRICE,
		Payload:  "11.25",
	})
	require.NoError(t, err)
	price, ok := req.(domain.UpdatePriceRequest)
	require.True(t, ok)
	assert.Equal(t, 11.25, price.PricePerLiter)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command:  mqtt.COMMAND_TYPE_NUMBER,
		DeviceId: events.INPUT_NUMBER_ID_GAS_PRICE,
		Payload:  "45",
	})
	assert.Error(t, err)
}

func TestParsedMQTTCommandToCommandUnknownEntity(t *testing.T) {
	req, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		Command:  mqtt.COMMAND_TYPE_NUMBER,
		DeviceId: "some_other_entity",
		Payload:  "1",
	})
	assert.NoError(t, err)
	assert.Nil(t, req)
}
