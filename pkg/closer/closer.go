package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// successIdx возвращается gracefulClose, если все ресурсы закрыты.
const successIdx = -1

// Closer закрывает зарегистрированные ресурсы в обратном порядке (LIFO).
type Closer struct {
	entries       []entry
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

type entry struct {
	name string
	fn   Func
}

// NewCloser создает новый экземпляр Closer.
// forcedTimeout — сколько ждать принудительного закрытия, если контекст Close истёк.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует ресурс под именем name; имя попадает в текст ошибок.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{name: name, fn: f})
}

// Close закрывает ресурсы LIFO. Повторные вызовы ничего не делают.
// Если ctx отменяется раньше, оставшиеся ресурсы закрываются параллельно с forcedTimeout.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		entries := c.entries
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, entries)
		if stopIdx == successIdx {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		errs = append(errs, c.forcedClose(entries[:stopIdx+1])...)
		err = fmt.Errorf(
			"shutdown interrupted after %d/%d resources:\n%s",
			len(entries)-1-stopIdx,
			len(entries),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

func (c *Closer) gracefulClose(ctx context.Context, entries []entry) (int, []string) {
	var errs []string
	for i := len(entries) - 1; i >= 0; i-- {
		en := entries[i]
		done := make(chan error, 1)

		go func() {
			done <- en.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", en.name, err))
			}
		case <-ctx.Done():
			return i, errs
		}
	}

	return successIdx, errs
}

func (c *Closer) forcedClose(entries []entry) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, en := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := en.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", en.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
