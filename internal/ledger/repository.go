package ledger

import "context"

// Repo 定义对余额存储的抽象操作
// 注意：Transfer 必须在存储层原子完成，禁止调用方先读后写拼接
type Repo interface {
	// GetBalance 查询余额，账户不存在时 ok 为 false
	GetBalance(ctx context.Context, id string) (balance int64, ok bool, err error)
	// SetBalance 覆盖写入余额
	SetBalance(ctx context.Context, id string, amount int64) error
	// InsertIfAbsent 仅在账户不存在时建档，已存在则无副作用
	InsertIfAbsent(ctx context.Context, id string, amount int64) error
	// Transfer 原子转账：from 减 amount，to 加 amount，返回双方新余额
	Transfer(ctx context.Context, from, to string, amount int64) (fromBalance, toBalance int64, err error)
}
