package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/messaging"
	"github.com/feral-file/ff-market-sync/internal/mocks"
	"github.com/feral-file/ff-market-sync/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testPublisherMocks struct {
	ctrl      *gomock.Controller
	natsJS    *mocks.MockNatsJetStream
	natsConn  *mocks.MockNatsConn
	jetStream *mocks.MockJetStream
}

func setupTestPublisher(t *testing.T) (*testPublisherMocks, messaging.Publisher) {
	ctrl := gomock.NewController(t)
	tm := &testPublisherMocks{
		ctrl:      ctrl,
		natsJS:    mocks.NewMockNatsJetStream(ctrl),
		natsConn:  mocks.NewMockNatsConn(ctrl),
		jetStream: mocks.NewMockJetStream(ctrl),
	}

	tm.natsJS.EXPECT().Connect("nats://localhost:4222", gomock.Any()).Return(tm.natsConn, tm.jetStream, nil)

	pub, err := jetstream.NewPublisher(jetstream.Config{
		URL:            "nats://localhost:4222",
		SubjectPrefix:  "market",
		MaxReconnects:  3,
		ReconnectWait:  time.Second,
		ConnectionName: "api-test",
	}, tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)
	return tm, pub
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	_, err := jetstream.NewPublisher(jetstream.Config{URL: "nats://nowhere:4222"}, natsJS, adapter.NewJSON())
	assert.ErrorContains(t, err, "no servers available")
}

func TestPublishNotification(t *testing.T) {
	tm, pub := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	notification := domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       domain.NewTokenKey("0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB", "42").String(),
	}

	tm.jetStream.EXPECT().
		Publish(gomock.Any(), "market.update_token", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var got domain.Notification
			assert.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, notification, got)
			return &natsjs.PubAck{Stream: "MARKET", Sequence: 1}, nil
		})

	require.NoError(t, pub.PublishNotification(context.Background(), notification))
}

func TestPublishNotification_Invalid(t *testing.T) {
	tm, pub := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	err := pub.PublishNotification(context.Background(), domain.Notification{Operation: "rename_token", Key: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)

	err = pub.PublishNotification(context.Background(), domain.Notification{Operation: domain.OperationUpdateUser, Key: "0xabc"})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestPublishNotification_BrokerError(t *testing.T) {
	tm, pub := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	tm.jetStream.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("nats: timeout"))

	err := pub.PublishNotification(context.Background(), domain.Notification{
		Operation: domain.OperationDeleteToken,
		Key:       "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB:42",
	})
	assert.ErrorContains(t, err, "failed to publish notification")
}

func TestPublisher_Close(t *testing.T) {
	tm, pub := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	tm.natsConn.EXPECT().Close()
	pub.Close()
}
