package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// querier — общее у пула и транзакции.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ClientStateRepo хранит клиентское состояние сессий (cart, userInfo) в таблице client_state.
type ClientStateRepo struct {
	pool *pgxpool.Pool
	conv converter.CartConverter
}

func NewClientStateRepo(pool *pgxpool.Pool, conv converter.CartConverter) *ClientStateRepo {
	return &ClientStateRepo{
		pool: pool,
		conv: conv,
	}
}

// Get возвращает сырое значение записи или nil, если записи нет.
func (c *ClientStateRepo) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM client_state
		WHERE session_id = $1 AND key = $2;
	`

	var model converter.ClientStateModel
	err := c.db(ctx).QueryRow(ctx, query, sessionID, key).Scan(&model.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return model.Value, nil
}

// Put перезаписывает запись целиком.
func (c *ClientStateRepo) Put(ctx context.Context, sessionID, key string, value []byte) error {
	if err := c.upsert(ctx, c.db(ctx), sessionID, key, value); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Dispatch применяет действие к корзине сессии под блокировкой строки.
// Отсутствующая или повреждённая корзина считается пустой.
func (c *ClientStateRepo) Dispatch(ctx context.Context, sessionID string, action domain.CartAction) (res *domain.Cart, err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.pool)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrTransactionNotFound)
	}
	ctx = tr.WithTx(ctx, pgxTx)

	// Блокируем строку, чтобы параллельные действия над одной корзиной шли по очереди
	lockQuery := `
		SELECT value
		FROM client_state
		WHERE session_id = $1 AND key = $2
		FOR UPDATE;
	`

	var current []byte
	err = pgxTx.QueryRow(ctx, lockQuery, sessionID, usecase.StateKeyCart).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cart := domain.ApplyCartAction(c.conv.ToCart(current), action)

	value, err := c.conv.FromCart(&cart)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err = c.upsert(ctx, pgxTx, sessionID, usecase.StateKeyCart, value); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &cart, nil
}

func (c *ClientStateRepo) upsert(ctx context.Context, q querier, sessionID, key string, value []byte) error {
	query := `
		INSERT INTO client_state (session_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW();
	`

	_, err := q.Exec(ctx, query, sessionID, key, value)
	return err
}

// db возвращает транзакцию из контекста, если она есть, иначе пул.
func (c *ClientStateRepo) db(ctx context.Context) querier {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}
	return c.pool
}

var (
	_ usecase.ClientStateRepository = (*ClientStateRepo)(nil)
	_ usecase.CartDispatcher        = (*ClientStateRepo)(nil)
)
