package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestEnsureAccountSeedsOnce(t *testing.T) {
	ctx := context.Background()
	lgr := New(NewMemoryRepo())

	_, ok, err := lgr.Balance(ctx, "10001")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, lgr.EnsureAccount(ctx, "10001"))
	bal, ok, err := lgr.Balance(ctx, "10001")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(NewPlayerMoney), bal)

	// 二次建档是 no-op，余额不变
	assert.NoError(t, lgr.repo.SetBalance(ctx, "10001", 42))
	assert.NoError(t, lgr.EnsureAccount(ctx, "10001"))
	bal, _, _ = lgr.Balance(ctx, "10001")
	assert.Equal(t, int64(42), bal)
}

func TestSettleZeroSum(t *testing.T) {
	ctx := context.Background()
	lgr := New(NewMemoryRepo())
	assert.NoError(t, lgr.EnsureAccount(ctx, "alice"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "bob"))

	winBal, loseBal, err := lgr.Settle(ctx, "alice", "bob", 200)
	assert.NoError(t, err)
	assert.Equal(t, int64(700), winBal)
	assert.Equal(t, int64(300), loseBal)

	// 余额允许为负，不设下限
	winBal, loseBal, err = lgr.Settle(ctx, "alice", "bob", 400)
	assert.NoError(t, err)
	assert.Equal(t, int64(1100), winBal)
	assert.Equal(t, int64(-100), loseBal)
}

// 并发结算同一账户不丢更新（最终余额 = 初始 + 全部增量之和）
func TestConcurrentSettlementsNoLostUpdate(t *testing.T) {
	ctx := context.Background()
	lgr := New(NewMemoryRepo())
	assert.NoError(t, lgr.EnsureAccount(ctx, "42"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "a"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "b"))

	const rounds = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _, err := lgr.Settle(ctx, "42", "a", 10) // "42" 赢
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _, err := lgr.Settle(ctx, "b", "42", 3) // "42" 输
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	bal, _, err := lgr.Balance(ctx, "42")
	assert.NoError(t, err)
	assert.Equal(t, int64(NewPlayerMoney+rounds*10-rounds*3), bal)
}

var errStoreDown = errors.New("store down")

// brokenTransferRepo 转账必失败，其余操作走内存实现
type brokenTransferRepo struct {
	Repo
}

func (r brokenTransferRepo) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	return 0, 0, errStoreDown
}

// 存储层转账失败时 Settle 原样把错误冒上去，余额不动
func TestSettlePropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepo()
	lgr := New(brokenTransferRepo{Repo: mem})
	assert.NoError(t, lgr.EnsureAccount(ctx, "alice"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "bob"))

	_, _, err := lgr.Settle(ctx, "alice", "bob", 200)
	assert.ErrorIs(t, err, errStoreDown)

	for _, id := range []string{"alice", "bob"} {
		bal, _, err := lgr.Balance(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, int64(NewPlayerMoney), bal)
	}
}

// ---------- Redis（miniredis）实现测试 ----------
func TestRedisRepoTransfer(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lgr := New(NewRedisRepo(rdb))

	assert.NoError(t, lgr.EnsureAccount(ctx, "p1"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "p2"))
	assert.NoError(t, lgr.EnsureAccount(ctx, "p1")) // 幂等

	bal, ok, err := lgr.Balance(ctx, "p1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(NewPlayerMoney), bal)

	winBal, loseBal, err := lgr.Settle(ctx, "p2", "p1", 150)
	assert.NoError(t, err)
	assert.Equal(t, int64(650), winBal)
	assert.Equal(t, int64(350), loseBal)

	// 账户不存在
	_, ok, err = lgr.Balance(ctx, "ghost")
	assert.NoError(t, err)
	assert.False(t, ok)
}
