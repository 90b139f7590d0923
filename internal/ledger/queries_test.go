package ledger

import (
	"context"
	"testing"

	"moneybase/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWallets_EmbedsFourMostRecent(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(gdb)
	ctx := context.Background()
	user := seedUser(t, gdb, "lena")
	other := seedUser(t, gdb, "mark")

	wallet, err := svc.CreateWallet(ctx, user.ID, WalletInput{Name: "main"})
	require.NoError(t, err)
	empty, err := svc.CreateWallet(ctx, user.ID, WalletInput{Name: "empty"})
	require.NoError(t, err)
	_, err = svc.CreateWallet(ctx, other.ID, WalletInput{Name: "not mine"})
	require.NoError(t, err)

	var ids []uint
	for i := 0; i < 6; i++ {
		op, _, err := svc.AddOperation(ctx, user.ID, OperationInput{
			WalletID: wallet.ID, Category: domain.Food, Type: domain.Loss, Amount: dec("1"),
		})
		require.NoError(t, err)
		ids = append(ids, op.ID)
	}

	wallets, err := svc.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	assert.Equal(t, wallet.ID, wallets[0].ID)
	require.Len(t, wallets[0].Operations, RecentPerWallet)
	// Newest first: the last four inserted, reversed
	assert.Equal(t, []uint{ids[5], ids[4], ids[3], ids[2]}, []uint{
		wallets[0].Operations[0].ID, wallets[0].Operations[1].ID,
		wallets[0].Operations[2].ID, wallets[0].Operations[3].ID,
	})

	assert.Equal(t, empty.ID, wallets[1].ID)
	assert.NotNil(t, wallets[1].Operations)
	assert.Empty(t, wallets[1].Operations)
}

func TestListOperations_Filters(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(gdb)
	ctx := context.Background()
	user := seedUser(t, gdb, "nina")
	wallet, err := svc.CreateWallet(ctx, user.ID, WalletInput{Name: "main"})
	require.NoError(t, err)

	add := func(c domain.Category, typ domain.OperationType, amount string) {
		_, _, err := svc.AddOperation(ctx, user.ID, OperationInput{WalletID: wallet.ID, Category: c, Type: typ, Amount: dec(amount)})
		require.NoError(t, err)
	}
	add(domain.Salary, domain.Profit, "1000")
	add(domain.Food, domain.Loss, "20")
	add(domain.Food, domain.Loss, "30")
	add(domain.Investment, domain.Profit, "15")
	add(domain.Housing, domain.Loss, "400")
	add(domain.Gifts, domain.Profit, "50")

	all, err := svc.ListOperations(ctx, OperationFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, all, DefaultLimit)

	food, err := svc.ListOperations(ctx, OperationFilter{UserID: user.ID, Category: domain.Food, Limit: 10})
	require.NoError(t, err)
	require.Len(t, food, 2)
	assert.True(t, food[0].Amount.Equal(dec("30")))

	profits, err := svc.ListOperations(ctx, OperationFilter{UserID: user.ID, Type: domain.Profit, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, profits, 3)
	for _, op := range profits {
		assert.Equal(t, domain.Profit, op.TypeOperation)
	}

	total, err := svc.CountOperations(ctx, OperationFilter{UserID: user.ID, Type: domain.Loss})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	stranger := seedUser(t, gdb, "oscar")
	none, err := svc.ListOperations(ctx, OperationFilter{UserID: stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProfitAndLoss(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(gdb)
	ctx := context.Background()
	user := seedUser(t, gdb, "pat")
	wallet, err := svc.CreateWallet(ctx, user.ID, WalletInput{Name: "main"})
	require.NoError(t, err)

	pl, err := svc.ProfitAndLoss(ctx, user.ID, wallet.ID)
	require.NoError(t, err)
	assert.True(t, pl.Profit.IsZero())
	assert.True(t, pl.Loss.IsZero())

	for _, in := range []OperationInput{
		{WalletID: wallet.ID, Category: domain.Salary, Type: domain.Profit, Amount: dec("100.5")},
		{WalletID: wallet.ID, Category: domain.Freelance, Type: domain.Profit, Amount: dec("20")},
		{WalletID: wallet.ID, Category: domain.Entertainment, Type: domain.Loss, Amount: dec("7.25")},
	} {
		_, _, err := svc.AddOperation(ctx, user.ID, in)
		require.NoError(t, err)
	}

	pl, err = svc.ProfitAndLoss(ctx, user.ID, wallet.ID)
	require.NoError(t, err)
	assert.True(t, pl.Profit.Equal(dec("120.5")), "profit %s", pl.Profit)
	assert.True(t, pl.Loss.Equal(dec("7.25")), "loss %s", pl.Loss)

	intruder := seedUser(t, gdb, "quinn")
	_, err = svc.ProfitAndLoss(ctx, intruder.ID, wallet.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+1))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, Allowed, judge(true, 1, 1))
	assert.Equal(t, Forbidden, judge(true, 1, 2))
	assert.Equal(t, NotFound, judge(false, 0, 2))
	assert.NoError(t, Allowed.Err())
	assert.ErrorIs(t, Forbidden.Err(), ErrForbidden)
	assert.ErrorIs(t, NotFound.Err(), ErrNotFound)
	assert.Equal(t, "forbidden", Forbidden.String())
}
