package ledger

import "context"

// NewPlayerMoney 新玩家建档金额
const NewPlayerMoney = 500

// Ledger 全进程共享的玩家账本，多个对局并发结算走同一个实例
type Ledger struct {
	repo          Repo
	startingMoney int64
}

func New(repo Repo) *Ledger {
	return &Ledger{repo: repo, startingMoney: NewPlayerMoney}
}

// EnsureAccount 首次引用某个玩家时建档，已有记录则无副作用
func (l *Ledger) EnsureAccount(ctx context.Context, id string) error {
	return l.repo.InsertIfAbsent(ctx, id, l.startingMoney)
}

// Balance 查询余额
func (l *Ledger) Balance(ctx context.Context, id string) (int64, bool, error) {
	return l.repo.GetBalance(ctx, id)
}

// Settle 一笔结算：赢家 +amount，输家 -amount，存储层原子完成，
// 返回结算后的双方余额
func (l *Ledger) Settle(ctx context.Context, winner, loser string, amount int64) (winnerBalance, loserBalance int64, err error) {
	loserBalance, winnerBalance, err = l.repo.Transfer(ctx, loser, winner, amount)
	return winnerBalance, loserBalance, err
}
