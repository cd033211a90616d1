package usecase

import (
	"fmt"

	"github.com/DRSN-tech/storefront-assistant/pkg/e"
)

// Envelope — общие поля ответа любого инструмента. Встраивается в каждый результат,
// поэтому в JSON получается плоский объект {success, <поля>, message, kind, rawData}.
// Kind заполняется только на ветке ошибки.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    e.Kind `json:"kind,omitempty"`
	RawData any    `json:"rawData"`
}

func (env Envelope) Failed() bool {
	return !env.Success
}

// Outcome возвращает общие поля ответа. Через встраивание доступен у любого результата.
func (env Envelope) Outcome() Envelope {
	return env
}

// Result — ответ любого инструмента.
type Result interface {
	Outcome() Envelope
}

func succeed(message string, raw any) Envelope {
	return Envelope{Success: true, Message: message, RawData: raw}
}

func fail(action string, err error) Envelope {
	return Envelope{
		Success: false,
		Message: fmt.Sprintf("%s: %v", action, err),
		Kind:    e.KindOf(err),
	}
}
