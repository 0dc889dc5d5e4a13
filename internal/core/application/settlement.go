package application

import (
	"context"
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// RetryPendingSettlements tries again to deliver the preimages that the
// federation released but the lightning node never received.
func (a *Actor) RetryPendingSettlements(ctx context.Context) {
	if a.taskGroup.IsShuttingDown() {
		return
	}

	settlements, err := a.repoManager.PendingSettlements().GetAll(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to fetch pending settlements")
		return
	}

	for _, settlement := range settlements {
		if settlement.Abandoned {
			continue
		}
		_ = a.settlePending(ctx, settlement.PaymentHash, nil)
	}
}

// settlePending delivers the preimage of the settlement stored for the
// payment hash, on the given htlc if it has been replayed. Settlements are
// serialized and re-read so that one resolved meanwhile isn't stored again.
func (a *Actor) settlePending(
	ctx context.Context, paymentHash string, replayedHtlc *domain.HtlcId,
) error {
	a.settleLock.Lock()
	defer a.settleLock.Unlock()

	repo := a.repoManager.PendingSettlements()
	logger := log.WithField("payment_hash", paymentHash)

	settlement, err := repo.Get(ctx, paymentHash)
	if err != nil {
		return fmt.Errorf("failed to get pending settlement: %w", err)
	}
	if settlement == nil {
		logger.Debug("pending settlement already resolved")
		return nil
	}
	if replayedHtlc == nil && settlement.Abandoned {
		return nil
	}
	if replayedHtlc != nil {
		settlement.HtlcId = *replayedHtlc
	}
	logger = logger.WithFields(log.Fields{
		"htlc_id":     settlement.HtlcId.String(),
		"contract_id": settlement.ContractId.String(),
	})

	err = a.completeHtlc(
		ctx, domain.NewSettleRequest(settlement.HtlcId, settlement.Preimage),
	)
	if err == nil {
		if err := repo.Delete(ctx, paymentHash); err != nil {
			logger.WithError(err).Warn("failed to delete pending settlement")
		}
		logger.Info("settled htlc with released preimage")
		return nil
	}

	settlement.RecordFailure(err, a.cfg.SettleMaxAttempts)
	if settlement.Abandoned {
		logger.WithError(err).Errorf(
			"giving up settling htlc after %d attempts, contract must be "+
				"reclaimed manually", settlement.Attempts,
		)
	} else {
		logger.WithError(err).Warn("failed to settle htlc, will retry")
	}

	if err := repo.Add(ctx, *settlement); err != nil {
		logger.WithError(err).Error("failed to update pending settlement")
	}
	return errSettleHtlc{settlement.HtlcId.String(), err}
}
