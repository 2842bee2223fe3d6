package services

import (
	"testing"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRequest_DepositApproval(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	tenant := f.tenant()

	req, err := f.svc.WalletRequests.CreateDeposit(f.ctx, tenant, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(22000), req.Amount)
	assert.Equal(t, constants.WalletRequestStatusPending, req.Status)
	assert.Equal(t, int64(0), f.balance(tenant))

	_, err = f.svc.WalletRequests.Approve(f.ctx, tenant, req.ID)
	requireCode(t, err, apperr.ErrCodeForbidden)

	approved, err := f.svc.WalletRequests.Approve(f.ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WalletRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, admin.UserID, *approved.ProcessedBy)
	assert.Equal(t, int64(22000), f.balance(tenant))

	_, err = f.svc.WalletRequests.Approve(f.ctx, admin, req.ID)
	requireCode(t, err, apperr.ErrCodeInvalidTransition)
	assert.Equal(t, int64(22000), f.balance(tenant))
}

func TestWalletRequest_Withdrawal(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	landlord := f.landlord()

	_, err := f.svc.WalletRequests.CreateWithdrawal(f.ctx, landlord, 1)
	requireCode(t, err, apperr.ErrCodeInsufficientFund)

	f.fund(landlord, 220)
	req, err := f.svc.WalletRequests.CreateWithdrawal(f.ctx, landlord, 2)
	require.NoError(t, err)

	_, err = f.svc.Wallet.DeductFunds(f.ctx, Entry{UserID: landlord.UserID, Amount: 1, Type: constants.TxAdjustment})
	require.NoError(t, err)

	_, err = f.svc.WalletRequests.Approve(f.ctx, admin, req.ID)
	requireCode(t, err, apperr.ErrCodeInsufficientFund)
	assert.Equal(t, int64(219), f.balance(landlord))

	f.fund(landlord, 1)
	_, err = f.svc.WalletRequests.Approve(f.ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.balance(landlord))
}

func TestWalletRequest_RejectAndList(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	tenant := f.tenant()

	_, err := f.svc.WalletRequests.CreateDeposit(f.ctx, admin, 10)
	requireCode(t, err, apperr.ErrCodeForbidden)
	_, err = f.svc.WalletRequests.CreateDeposit(f.ctx, tenant, 0.001)
	requireCode(t, err, apperr.ErrCodeInvalidAmount)
	_, err = f.svc.WalletRequests.CreateDeposit(f.ctx, tenant, 1e17)
	requireCode(t, err, apperr.ErrCodeInvalidAmount)
	assert.Equal(t, constants.MaxWalletRequestUSD, apperr.GetAppError(err).Details["max_usd"])

	req, err := f.svc.WalletRequests.CreateDeposit(f.ctx, tenant, 10)
	require.NoError(t, err)

	_, err = f.svc.WalletRequests.Reject(f.ctx, admin, req.ID, "")
	requireCode(t, err, apperr.ErrCodeValidation)

	rejected, err := f.svc.WalletRequests.Reject(f.ctx, admin, req.ID, "no transfer received")
	require.NoError(t, err)
	assert.Equal(t, constants.WalletRequestStatusRejected, rejected.Status)
	assert.Equal(t, int64(0), f.balance(tenant))

	mine, total, err := f.svc.WalletRequests.ListMine(f.ctx, tenant, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "no transfer received", mine[0].Reason)

	_, _, err = f.svc.WalletRequests.List(f.ctx, tenant, "", "", types.Page{Limit: 10})
	requireCode(t, err, apperr.ErrCodeForbidden)
	all, total, err := f.svc.WalletRequests.List(f.ctx, admin, constants.WalletRequestStatusRejected, constants.WalletRequestDeposit, types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, tenant.UserID, all[0].User.ID)
}
