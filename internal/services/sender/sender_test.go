package sender

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return m.Called().String(0)
}

func (m *MockTransport) GetRecipient() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const validBody = `{"title":"Installment due","body":"Installment 3/12: TV: 100.00","correlation_id":"inst-1","sent_at":"2024-04-10T12:00:00Z"}`

func TestService_SendInstallmentDue(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
	}{
		{
			name: "success",
			body: []byte(validBody),
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				writer := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("bot@example.com")
				tr.On("GetRecipient").Return("me@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "bot@example.com").Return(nil).Once()
				client.On("Rcpt", "me@example.com").Return(nil).Once()
				client.On("Data").Return(writer, nil).Once()
				writer.On("Write", mock.MatchedBy(func(p []byte) bool {
					msg := string(p)
					return strings.Contains(msg, "Subject: Installment due") &&
						strings.Contains(msg, "Installment 3/12: TV: 100.00") &&
						strings.Contains(msg, "Ref: inst-1") &&
						strings.Contains(msg, "Date: 2024-04-10")
				})).Return(100, nil).Once()
				writer.On("Close").Return(nil).Once()
				client.On("Quit").Return(nil).Once()
				client.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid json",
			body:          []byte(`{invalid`),
			setupMocks:    func(*MockTransport) {},
			expectedError: true,
		},
		{
			name: "connect error",
			body: []byte(validBody),
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("bot@example.com")
				tr.On("GetRecipient").Return("me@example.com")
				tr.On("Connect").Return(nil, errors.New("dial tcp: refused")).Once()
			},
			expectedError: true,
		},
		{
			name: "rcpt error",
			body: []byte(validBody),
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("GetSMTPUser").Return("bot@example.com")
				tr.On("GetRecipient").Return("me@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "bot@example.com").Return(nil).Once()
				client.On("Rcpt", "me@example.com").Return(errors.New("550 no such user")).Once()
				client.On("Close").Return(nil).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			tt.setupMocks(tr)
			svc := NewService(tr, newNoopLogger())

			err := svc.SendInstallmentDue(tt.body)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			tr.AssertExpectations(t)
		})
	}
}

func TestService_SendInstallmentDue_OnlyBadPayloadIsUnprocessable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tr := new(MockTransport)
	svc := NewService(tr, logger)
	err := svc.SendInstallmentDue([]byte(`{invalid`))
	assert.ErrorIs(t, err, rabbitmq.ErrUnprocessable)

	tr.On("GetSMTPUser").Return("bot@example.com")
	tr.On("GetRecipient").Return("me@example.com")
	tr.On("Connect").Return(nil, errors.New("dial tcp: refused")).Once()
	err = svc.SendInstallmentDue([]byte(validBody))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, rabbitmq.ErrUnprocessable)
}
