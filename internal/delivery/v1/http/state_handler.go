package http

import (
	"io"
	"net/http"

	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxStateSize = 1 << 20

type StateHandler struct {
	stateUC usecase.StateSyncUC
	logger  logger.Logger
}

func NewStateHandler(stateUC usecase.StateSyncUC, logger logger.Logger) *StateHandler {
	return &StateHandler{stateUC: stateUC, logger: logger}
}

// saveState
//
//	@Summary		Синхронизация клиентского состояния
//	@Description	Сохраняет запись cart или userInfo клиентской сессии
//	@Tags			state
//	@Accept			json
//	@Param			key				path	string	true	"cart или userInfo"
//	@Param			X-Session-ID	header	string	true	"Идентификатор клиентской сессии"
//	@Param			value			body	object	true	"JSON-объект записи"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/state/{key} [put]
func (h *StateHandler) saveState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	caller, err := callerFromRequest(r)
	if err != nil {
		h.logger.Warnf("%d %s: state %s", http.StatusBadRequest, err.Error(), key)
		WriteError(w, err)
		return
	}

	value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStateSize))
	if err != nil {
		h.logger.Warnf("%d failed to read state %s: %s", http.StatusBadRequest, key, err.Error())
		WriteError(w, e.Wrap(key, e.ErrInvalidArguments))
		return
	}

	ctx := usecase.WithCaller(r.Context(), caller)
	if err := h.stateUC.SaveState(ctx, key, value); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
