package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/DRSN-tech/storefront-assistant/internal/tools"

// Tool — функция, доступная LLM: имя, описание, JSON-схема аргументов и обработчик.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	AdminOnly   bool

	invoke func(ctx context.Context, args json.RawMessage) (usecase.Result, error)
	fail   func(action string, err error) usecase.Result
}

// Declaration — описание инструмента для слоя LLM.
type Declaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	AdminOnly   bool           `json:"adminOnly"`
}

// Registry хранит инструменты и вызывает их по имени.
type Registry struct {
	tools   map[string]Tool
	order   []string
	session usecase.SessionReader
	logger  logger.Logger
	tracer  trace.Tracer
}

func NewRegistry(session usecase.SessionReader, logger logger.Logger, tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		session: session,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}

	for _, t := range tools {
		if t.Name == "" || t.invoke == nil || t.fail == nil {
			return nil, fmt.Errorf("tool %q is not fully defined", t.Name)
		}
		if _, exists := r.tools[t.Name]; exists {
			return nil, fmt.Errorf("tool %q already registered", t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}

	return r, nil
}

// Declarations возвращает описания инструментов в порядке регистрации.
func (r *Registry) Declarations() []Declaration {
	res := make([]Declaration, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		res = append(res, Declaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			AdminOnly:   t.AdminOnly,
		})
	}
	return res
}

// Invoke вызывает инструмент. Ошибка возвращается только для неизвестного имени,
// всё остальное приходит конвертом с success=false.
func (r *Registry) Invoke(ctx context.Context, caller usecase.Caller, name string, args json.RawMessage) (usecase.Result, error) {
	const op = "Registry.Invoke"

	tool, ok := r.tools[name]
	if !ok {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s", e.ErrUnknownTool, name))
	}

	ctx, span := r.tracer.Start(ctx, "tool."+name, trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.Bool("tool.admin_only", tool.AdminOnly),
	))
	defer span.End()

	start := time.Now()
	res := r.invoke(ctx, tool, caller, args)
	out := res.Outcome()

	status := statusSuccess
	if out.Failed() {
		status = string(out.Kind)
		span.SetStatus(codes.Error, out.Message)
		r.logger.Warnf("Tool %s failed (%s): %s", name, out.Kind, out.Message)
	} else {
		span.SetStatus(codes.Ok, "")
		r.logger.Debugf("Tool %s succeeded: %s", name, out.Message)
	}
	span.SetAttributes(attribute.String("tool.status", status))

	toolInvocations.WithLabelValues(name, status).Inc()
	toolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	return res, nil
}

func (r *Registry) invoke(ctx context.Context, tool Tool, caller usecase.Caller, args json.RawMessage) usecase.Result {
	action := "Failed to run " + tool.Name

	ctx = usecase.WithCaller(ctx, caller)
	user, loggedIn := r.session.CurrentUser(ctx)

	// Токен из заголовка важнее сохранённого в сессии
	if caller.Token == "" && loggedIn && user.Token != "" {
		caller.Token = user.Token
		ctx = usecase.WithCaller(ctx, caller)
	}

	if tool.AdminOnly && (!loggedIn || !user.IsAdmin) {
		return tool.fail(action, e.ErrAdminRequired)
	}

	res, err := tool.invoke(ctx, args)
	if err != nil {
		return tool.fail(action, err)
	}
	return res
}

// bind превращает метод usecase в обработчик с разбором JSON-аргументов.
func bind[Req any, Res usecase.Result](call func(context.Context, *Req) Res) func(context.Context, json.RawMessage) (usecase.Result, error) {
	return func(ctx context.Context, args json.RawMessage) (usecase.Result, error) {
		var req Req
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return call(ctx, &req), nil
	}
}

func noArgs[Res usecase.Result](call func(context.Context) Res) func(context.Context, *struct{}) Res {
	return func(ctx context.Context, _ *struct{}) Res {
		return call(ctx)
	}
}

func failWith[Res usecase.Result](failed func(string, error) Res) func(string, error) usecase.Result {
	return func(action string, err error) usecase.Result {
		return failed(action, err)
	}
}

// decodeArgs считает пустые аргументы и null пустым объектом.
// Неизвестные аргументы верхнего уровня и данные после объекта отклоняются.
func decodeArgs(args json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if e.KindOf(err) == e.KindValidation {
			return err
		}
		return fmt.Errorf("%w: %v", e.ErrInvalidArguments, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after arguments", e.ErrInvalidArguments)
	}
	return nil
}
