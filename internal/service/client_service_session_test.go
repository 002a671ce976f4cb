package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSessionService_SetToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)

	notified := 0
	s := &sessionService{remote: remote, notify: func(context.Context) { notified++ }, logger: logger.Nop()}

	gomock.InOrder(
		remote.EXPECT().SetToken("tok-2"),
		remote.EXPECT().UserID().Return("user-2"),
	)
	require.NoError(t, s.SetToken(context.Background(), "  tok-2 "))
	assert.Equal(t, 1, notified)

	remote.EXPECT().UserID().Return("user-2")
	assert.Equal(t, "user-2", s.UserID())
}

func TestSessionService_EmptyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := &sessionService{remote: mock.NewMockRemoteStore(ctrl), logger: logger.Nop()}

	// пустой токен не должен доходить до адаптера
	assert.ErrorIs(t, s.SetToken(context.Background(), "   "), ErrInvalidRequest)
}

func TestSessionService_NoRemote(t *testing.T) {
	s := &sessionService{logger: logger.Nop()}

	assert.ErrorIs(t, s.SetToken(context.Background(), "tok"), ErrNoRemote)
	assert.Empty(t, s.UserID())
}
