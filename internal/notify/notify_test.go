package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"battlezone/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	return l, &buf
}

func TestAMQPSender_Publishes(t *testing.T) {
	l, _ := testLogger()
	ch := &mockChannel{}
	s := &AMQPSender{ch: ch, exchange: "events", timeout: time.Second, logger: l}

	ev := domain.Event{Type: domain.EventDepositApproved, ReferenceID: 9, Amount: 250, OccurredAt: time.Now()}
	ch.On("PublishWithContext", mock.Anything, "events", "account.deposit_approved", false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var msg Message
			if err := json.Unmarshal(p.Body, &msg); err != nil {
				return false
			}
			return p.MessageId == msg.ID && msg.AccountID == 4 && msg.Amount == 250 && p.DeliveryMode == amqp.Persistent
		})).Return(nil).Once()

	s.Notify(context.Background(), 4, ev)
	ch.AssertExpectations(t)
}

func TestAMQPSender_FailureIsLogged(t *testing.T) {
	l, buf := testLogger()
	ch := &mockChannel{}
	s := &AMQPSender{ch: ch, exchange: "events", timeout: time.Second, logger: l}
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("channel closed"))

	assert.NotPanics(t, func() {
		s.Notify(context.Background(), 4, domain.Event{Type: domain.EventKillReward})
	})
	assert.Contains(t, buf.String(), "Notification dropped")
	assert.Contains(t, buf.String(), "channel closed")

	ch.On("Close").Return(nil)
	require.NoError(t, s.Close())
}

func TestLogSender(t *testing.T) {
	l, buf := testLogger()
	LogSender{Logger: l}.Notify(context.Background(), 3, domain.Event{Type: domain.EventTournamentJoined, ReferenceID: 8})
	assert.Contains(t, buf.String(), "tournament_joined")
	assert.Contains(t, buf.String(), "account_id=3")
}
