package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/storefront-assistant/internal/tools"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxArgumentsSize = 1 << 20

// ToolRegistry — то, что HTTP-слою нужно от реестра инструментов.
type ToolRegistry interface {
	Declarations() []tools.Declaration
	Invoke(ctx context.Context, caller usecase.Caller, name string, args json.RawMessage) (usecase.Result, error)
}

type ToolHandler struct {
	registry ToolRegistry
	logger   logger.Logger
}

func NewToolHandler(registry ToolRegistry, logger logger.Logger) *ToolHandler {
	return &ToolHandler{registry: registry, logger: logger}
}

// listTools
//
//	@Summary		Список инструментов
//	@Description	Возвращает описания инструментов с JSON-схемами аргументов для LLM
//	@Tags			tools
//	@Produce		json
//	@Success		200	{array}	tools.Declaration
//	@Router			/tools [get]
func (h *ToolHandler) listTools(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, h.registry.Declarations())
}

// invokeTool
//
//	@Summary		Вызов инструмента
//	@Description	Выполняет инструмент и возвращает конверт результата. Ошибки инструмента приходят с кодом 200 и success=false
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Param			name			path		string					true	"Имя инструмента"
//	@Param			X-Session-ID	header		string					true	"Идентификатор клиентской сессии"
//	@Param			Authorization	header		string					false	"Bearer-токен API магазина"
//	@Param			arguments		body		object					false	"Аргументы инструмента"
//	@Success		200				{object}	map[string]interface{}	"Конверт результата"
//	@Failure		400				{object}	ErrorResponse			"Нет сессии или тело слишком большое"
//	@Failure		404				{object}	ErrorResponse			"Неизвестный инструмент"
//	@Router			/tools/{name} [post]
func (h *ToolHandler) invokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	caller, err := callerFromRequest(r)
	if err != nil {
		h.logger.Warnf("%d %s: tool %s", http.StatusBadRequest, err.Error(), name)
		WriteError(w, err)
		return
	}

	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgumentsSize))
	if err != nil {
		h.logger.Warnf("%d failed to read arguments of %s: %s", http.StatusBadRequest, name, err.Error())
		WriteError(w, e.Wrap(name, e.ErrInvalidArguments))
		return
	}

	res, err := h.registry.Invoke(r.Context(), caller, name, args)
	if err != nil {
		if !errors.Is(err, e.ErrUnknownTool) {
			h.logger.Errorf(err, "tool %s", name)
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
