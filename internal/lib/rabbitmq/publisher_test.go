package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage_Unit(t *testing.T) {
	type testMsg struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		message    any
		publishErr error
		wantErr    bool
		wantCall   bool
	}{
		{
			name:     "success",
			message:  testMsg{ID: 1, Name: "Hello"},
			wantCall: true,
		},
		{
			name:       "broker error",
			message:    testMsg{ID: 2},
			publishErr: errors.New("channel closed"),
			wantErr:    true,
			wantCall:   true,
		},
		{
			name:    "marshal error",
			message: struct{ Ch chan int }{Ch: make(chan int)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(MockPublisher)
			if tt.wantCall {
				pub.On("Publish", ExchangeLedger, RoutingKeyExpense, false, false,
					mock.MatchedBy(func(p amqp.Publishing) bool {
						var got testMsg
						return p.ContentType == "application/json" &&
							p.DeliveryMode == amqp.Persistent &&
							json.Unmarshal(p.Body, &got) == nil
					})).Return(tt.publishErr).Once()
			}

			err := PublishMessage(pub, ExchangeLedger, RoutingKeyExpense, tt.message)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
			} else {
				require.NoError(t, err)
			}
			pub.AssertExpectations(t)
		})
	}
}
