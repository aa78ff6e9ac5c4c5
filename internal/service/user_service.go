package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/model"
)

type UserService struct {
	users          UserStore
	barberTelegram int64
	logger         *zap.Logger
}

// NewUserService creates the service; barberTelegramID marks the barber account
func NewUserService(users UserStore, barberTelegramID int64, logger *zap.Logger) *UserService {
	return &UserService{
		users:          users,
		barberTelegram: barberTelegramID,
		logger:         logger,
	}
}

// RegisterUser creates or refreshes the user behind a Telegram account
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	existing, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	isBarber := s.IsBarber(telegramID)

	if existing != nil {
		if existing.Username == username && existing.FirstName == firstName &&
			existing.LastName == lastName && existing.IsBarber == isBarber {
			return existing, nil
		}

		existing.Username = username
		existing.FirstName = firstName
		existing.LastName = lastName
		existing.IsBarber = isBarber

		if err := s.users.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.logger.Info("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username))

		return existing, nil
	}

	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		IsBarber:   isBarber,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same account.
		if errors.Is(err, model.ErrUserExists) {
			return s.users.GetUserByTelegramID(ctx, telegramID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
		zap.Bool("is_barber", isBarber))

	return user, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetUserByTelegramID(ctx, telegramID)
}

// SetPhone stores the phone used to prefill bookings
func (s *UserService) SetPhone(ctx context.Context, telegramID int64, phone string) (*model.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", model.ErrInvalidInput)
	}

	user, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrNotFound
	}

	user.Phone = phone
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("User phone updated", zap.Int64("user_id", user.ID))
	return user, nil
}

// IsBarber checks the configured barber account
func (s *UserService) IsBarber(telegramID int64) bool {
	return s.barberTelegram != 0 && telegramID == s.barberTelegram
}
