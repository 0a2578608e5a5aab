package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo 建表并返回仓库，表结构沿用单表 qq -> money
func NewPostgresRepo(ctx context.Context, db *sql.DB) (Repo, error) {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS blackjack (
            qq    TEXT PRIMARY KEY,
            money BIGINT NOT NULL
        )`)
	if err != nil {
		return nil, fmt.Errorf("create blackjack table: %w", err)
	}
	return &postgresRepo{db: db}, nil
}

func (r *postgresRepo) GetBalance(ctx context.Context, id string) (int64, bool, error) {
	var money int64
	err := r.db.QueryRowContext(ctx, `SELECT money FROM blackjack WHERE qq=$1`, id).Scan(&money)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return money, true, nil
}

func (r *postgresRepo) SetBalance(ctx context.Context, id string, amount int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE blackjack SET money=$1 WHERE qq=$2`, amount, id)
	return err
}

func (r *postgresRepo) InsertIfAbsent(ctx context.Context, id string, amount int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blackjack (qq, money) VALUES ($1, $2) ON CONFLICT (qq) DO NOTHING`, id, amount)
	return err
}

// Transfer 单事务内两条相对更新，任一失败整体回滚，不会只划走一边
func (r *postgresRepo) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var fromBal, toBal int64
	err = tx.QueryRowContext(ctx,
		`UPDATE blackjack SET money = money - $1 WHERE qq=$2 RETURNING money`, amount, from).Scan(&fromBal)
	if err != nil {
		return 0, 0, fmt.Errorf("debit %s: %w", from, err)
	}
	err = tx.QueryRowContext(ctx,
		`UPDATE blackjack SET money = money + $1 WHERE qq=$2 RETURNING money`, amount, to).Scan(&toBal)
	if err != nil {
		return 0, 0, fmt.Errorf("credit %s: %w", to, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return fromBal, toBal, nil
}
