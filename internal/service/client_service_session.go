package service

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
)

type sessionService struct {
	remote adapter.RemoteStore
	notify func(ctx context.Context)
	logger *logger.Logger
}

func (s *sessionService) SetToken(ctx context.Context, token string) error {
	if s.remote == nil {
		return ErrNoRemote
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidRequest
	}

	s.remote.SetToken(token)
	s.logger.Info().Str("func", "sessionService.SetToken").Str("user_id", s.remote.UserID()).Msg("access token replaced")

	if s.notify != nil {
		s.notify(ctx)
	}
	return nil
}

func (s *sessionService) UserID() string {
	if s.remote == nil {
		return ""
	}
	return s.remote.UserID()
}
