package storage

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// DB 账本的 Postgres 连接，只在配置了 DSN 时初始化
var DB *sql.DB

func InitPostgres(dsn string) error {
	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	// 结算事务都很短，连接池不用大
	DB.SetMaxOpenConns(8)
	DB.SetConnMaxIdleTime(5 * time.Minute)
	return DB.Ping()
}
