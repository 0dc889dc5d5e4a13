package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"
)

func (a *Actor) GetDepositAddress(ctx context.Context) (btcutil.Address, error) {
	return a.client.GetNewPegInAddress(ctx)
}

func (a *Actor) Deposit(
	ctx context.Context, proof domain.TxOutProof, tx *wire.MsgTx,
) (chainhash.Hash, error) {
	if tx == nil {
		return chainhash.Hash{}, fmt.Errorf("missing peg-in transaction")
	}
	return a.client.PegIn(ctx, proof, tx)
}

func (a *Actor) Withdraw(
	ctx context.Context, amount btcutil.Amount, address btcutil.Address,
) (chainhash.Hash, error) {
	a.fetchAllNotes(ctx)

	pegOut, err := a.client.NewPegOutWithFees(ctx, amount, address)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("failed to create peg-out with fees: %w", err)
	}

	outpoint, err := a.client.PegOut(ctx, *pegOut)
	if err != nil {
		return chainhash.Hash{}, err
	}
	log.Infof(
		"withdrew %s (fees %s) to %s in tx %s",
		pegOut.Amount, pegOut.Fees.Amount(), address, outpoint.Hash,
	)
	return outpoint.Hash, nil
}

func (a *Actor) Backup(ctx context.Context) error {
	if err := a.client.BackupNotes(ctx); err != nil {
		return fmt.Errorf("failed to back up notes: %w", err)
	}
	return nil
}

// Restore recovers the notes from the federation and waits for every
// recovery task to complete.
func (a *Actor) Restore(ctx context.Context) error {
	tasks, err := a.client.RestoreNotes(ctx, a.cfg.RestoreGapLimit)
	if err != nil {
		return fmt.Errorf("failed to restore notes: %w", err)
	}

	var (
		lock sync.Mutex
		errs []error
	)
	taskGroup := NewTaskGroup(ctx)
	for i, task := range tasks {
		task := task
		taskGroup.Spawn(fmt.Sprintf("restore notes %d", i), func(ctx context.Context) {
			if err := task(ctx); err != nil {
				lock.Lock()
				errs = append(errs, err)
				lock.Unlock()
			}
		})
	}
	taskGroup.Join()
	taskGroup.Shutdown()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to restore notes: %w", err)
	}
	return nil
}

func (a *Actor) GetBalance(ctx context.Context) (domain.Amount, error) {
	a.fetchAllNotes(ctx)

	return a.client.TotalNotesAmount(ctx)
}

func (a *Actor) GetInfo() (*domain.FederationInfo, error) {
	cfg := a.client.Config()
	if cfg.RedeemKey == nil {
		return nil, ErrMissingRedeemKey
	}
	return &domain.FederationInfo{
		FederationId: cfg.FederationId,
		MintPubkey:   cfg.RedeemKey,
	}, nil
}

// fetchAllNotes refreshes the local notes, a failure leaves the previous ones
// in place.
func (a *Actor) fetchAllNotes(ctx context.Context) {
	if err := a.client.FetchAllNotes(ctx); err != nil {
		log.WithError(err).Debug("fetching notes failed")
	}
}
