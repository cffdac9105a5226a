package mqtt

import (
	"testing"

	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m testMessage) Topic() string {
	return m.topic
}

func (m testMessage) Payload() []byte {
	return m.payload
}

func testClient() *MQTTClient {
	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "duragas",
		},
	}
	return CreateMQTTClient(cfg, OptsFromConfig(cfg), nil, nil)
}

func TestTopics(t *testing.T) {
	client := testClient()

	assert.Equal(t, "duragas/bridge/state", client.BridgeStateTopic())
	assert.Equal(t, "duragas/sensor/tank_level/state", client.SensorStateTopic("tank_level"))
	assert.Equal(t, "duragas/binary_sensor/low_level/state", client.BinarySensorStateTopic("low_level"))
	assert.Equal(t, "duragas/select/refill_strategy/set", client.SelectCommandTopic("refill_strategy"))
	assert.Equal(t, "duragas/number/gas_price/set", client.InputNumberCommandTopic("gas_price"))
	assert.Equal(t, "duragas/tank/refill/set", client.RefillCommandTopic())
}

func TestParseSelectCommand(t *testing.T) {
	client := testClient()

	cmd, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/select/refill_strategy/set",
		payload: []byte("fixed_300"),
	})
	require.NoError(t, err)
	assert.Equal(t, COMMAND_TYPE_SELECT, cmd.Command)
	assert.Equal(t, "refill_strategy", cmd.DeviceId)
	assert.Equal(t, "fixed_300", cmd.Payload)
}

func TestParseInputNumberCommand(t *testing.T) {
	client := testClient()

	cmd, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/number/gas_price/set",
		payload: []byte("11.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, COMMAND_TYPE_NUMBER, cmd.Command)
	assert.Equal(t, "gas_price", cmd.DeviceId)
	assert.Equal(t, "11.25", cmd.Payload)
}

func TestParseInputNumberCommandRejectsNonNumeric(t *testing.T) {
	client := testClient()

	_, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/number/gas_price/set",
		payload: []byte("not a number"),
	})
	assert.Error(t, err)
}

func TestParseRefillCommand(t *testing.T) {
	client := testClient()

	cmd, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/tank/refill/set",
		payload: []byte(`{"liters": 50.56, "price_per_liter": 10.88}`),
	})
	require.NoError(t, err)
	assert.Equal(t, COMMAND_TYPE_REFILL, cmd.Command)
}

func TestParseRefillCommandRejectsMalformedJSON(t *testing.T) {
	client := testClient()

	_, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/tank/refill/set",
		payload: []byte("{nope"),
	})
	assert.Error(t, err)
}

func TestParseStateTopicIsNotACommand(t *testing.T) {
	client := testClient()

	_, err := client.ParseMQTTCommand(testMessage{
		topic:   "duragas/sensor/tank_level/state",
		payload: []byte("50"),
	})
	assert.Error(t, err)
}

func TestHADiscoveryTopics(t *testing.T) {
	client := testClient()

	sel := domain.GenericSelect{
		Device:   domain.Device{Id: "duragas_tank_abc"},
		Id:       "refill_strategy",
		Name:     "Refill strategy",
		UniqueId: "uid_duragas_tank_abc_refill_strategy",
		Options:  []string{"fill_complete", "fixed_300"},
	}

	msg := GenericSelectToHADiscoveryMessage(client, sel)
	assert.Equal(t, "duragas/select/refill_strategy/state", msg.StateTopic)
	assert.Equal(t, "duragas/select/refill_strategy/set", msg.CommandTopic)
	assert.NotEmpty(t, msg.Options)

	topic := HADiscoverySelectTopic("homeassistant", sel)
	assert.Equal(t, "homeassistant/select/duragas_tank_abc/refill_strategy/config", topic)
}
