package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// SessionUseCase читает запись userInfo клиентской сессии.
type SessionUseCase struct {
	state  ClientStateRepository
	logger logger.Logger
}

func NewSessionUC(state ClientStateRepository, logger logger.Logger) *SessionUseCase {
	return &SessionUseCase{state: state, logger: logger}
}

// GetUserInfo сообщает, кто вошёл в систему. Отсутствующая или испорченная запись означает «не вошёл».
func (s *SessionUseCase) GetUserInfo(ctx context.Context) *UserInfoResult {
	const (
		op     = "SessionUseCase.GetUserInfo"
		action = "Failed to get user info"
	)

	sid, err := sessionID(ctx)
	if err != nil {
		return FailedUserInfo(action, err)
	}

	user, err := s.load(ctx, sid)
	if err != nil {
		s.logger.Warnf("Failed to read user info of session %s: %v", sid, e.Wrap(op, err))
		return FailedUserInfo(action, err)
	}

	if user == nil {
		return &UserInfoResult{Envelope: succeed("User is not logged in", nil)}
	}

	res := &UserInfoResult{
		Envelope: succeed("Logged in as "+user.Name, newUserView(user)),
		LoggedIn: true,
		User:     newUserView(user),
	}
	if user.IsAdmin {
		res.Message += " (admin)"
	}
	res.TokenExpiresAt = tokenExpiry(user.Token)

	return res
}

// CurrentUser возвращает пользователя сессии из контекста вызова.
func (s *SessionUseCase) CurrentUser(ctx context.Context) (*domain.UserInfo, bool) {
	const op = "SessionUseCase.CurrentUser"

	sid, err := sessionID(ctx)
	if err != nil {
		return nil, false
	}

	user, err := s.load(ctx, sid)
	if err != nil {
		s.logger.Warnf("Failed to read user info of session %s: %v", sid, e.Wrap(op, err))
		return nil, false
	}

	return user, user != nil
}

// SaveState сохраняет запись состояния, присланную клиентом. Значение должно быть JSON-объектом.
func (s *SessionUseCase) SaveState(ctx context.Context, key string, value json.RawMessage) error {
	const op = "SessionUseCase.SaveState"

	sid, err := sessionID(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	if key != StateKeyCart && key != StateKeyUserInfo {
		return e.Wrap(op, fmt.Errorf("%w: unknown state key %q", e.ErrInvalidArguments, key))
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(value, &obj); err != nil || obj == nil {
		return e.Wrap(op, fmt.Errorf("%w: %s must be a JSON object", e.ErrInvalidArguments, key))
	}

	if err := s.state.Put(ctx, sid, key, value); err != nil {
		return e.Wrap(op, err)
	}

	s.logger.Debugf("Saved %s of session %s", key, sid)
	return nil
}

// load возвращает nil без ошибки, если записи нет или она не разбирается.
func (s *SessionUseCase) load(ctx context.Context, sid string) (*domain.UserInfo, error) {
	const op = "SessionUseCase.load"

	raw, err := s.state.Get(ctx, sid, StateKeyUserInfo)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var user domain.UserInfo
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warnf("Ignoring userInfo of session %s: %v", sid, e.Wrap(op, e.ErrMalformedState))
		return nil, nil
	}
	if strings.TrimSpace(user.ID) == "" && strings.TrimSpace(user.Email) == "" {
		return nil, nil
	}

	return &user, nil
}

// tokenExpiry читает exp из JWT без проверки подписи: токен проверяет API магазина.
func tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	t := exp.UTC()
	return &t
}

func sessionID(ctx context.Context) (string, error) {
	caller, ok := CallerFromCtx(ctx)
	if !ok || strings.TrimSpace(caller.SessionID) == "" {
		return "", e.ErrSessionRequired
	}
	return caller.SessionID, nil
}
