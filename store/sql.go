package store

import (
	"context"
	"database/sql"
	"time"
)

//SQLSchema DDL for the backing table, MySQL dialect
const SQLSchema = `
CREATE TABLE IF NOT EXISTS batch_operation_state (
	state_key    VARCHAR(128) NOT NULL PRIMARY KEY,
	state_value  MEDIUMTEXT   NOT NULL,
	update_time  DATETIME     NOT NULL
)`

//SQLStore Store backed by a *sql.DB, one row per key
type SQLStore struct {
	db *sql.DB
}

//NewSQLStore new instance. The caller owns the *sql.DB.
func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("sqlDb must not be nil")
	}
	return &SQLStore{db: db}
}

//Init create the backing table if missing
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, SQLSchema)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	rows, err := s.db.QueryContext(ctx, "select state_value from batch_operation_state where state_key=?", key)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	if rows.Next() {
		var value string
		if err = rows.Scan(&value); err != nil {
			return "", false, err
		}
		return value, true, nil
	}
	return "", false, rows.Err()
}

func (s *SQLStore) Set(ctx context.Context, key string, value string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		"insert into batch_operation_state(state_key, state_value, update_time) values(?, ?, ?) on duplicate key update state_value=?, update_time=?",
		key, value, now, value, now)
	return err
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "delete from batch_operation_state where state_key=?", key)
	return err
}
