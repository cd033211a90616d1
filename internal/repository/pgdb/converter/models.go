package converter

import "time"

// ClientStateModel представляет запись таблицы client_state в PostgreSQL.
type ClientStateModel struct {
	SessionID string    `db:"session_id"`
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
