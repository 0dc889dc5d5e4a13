package ports

import (
	"context"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
)

// RecoveryTask is a unit of background work returned by a note restore that
// must run to completion for the restore to be done.
type RecoveryTask func(ctx context.Context) error

// FederationClient is the gateway's handle on a federation. Contract and note
// operations are executed by the federation, the gateway only requests them.
type FederationClient interface {
	Config() domain.GatewayClientConfig
	RegisterWithFederation(
		ctx context.Context, registration domain.GatewayRegistration,
	) error

	FetchOutgoingContract(
		ctx context.Context, contractId domain.ContractId,
	) (*domain.OutgoingContractAccount, error)
	ValidateOutgoingAccount(
		ctx context.Context, account domain.OutgoingContractAccount,
	) (*domain.PaymentParameters, error)
	SaveOutgoingPayment(
		ctx context.Context, account domain.OutgoingContractAccount,
	) error
	CancelOutgoingContract(
		ctx context.Context, account domain.OutgoingContractAccount,
	) error
	ClaimOutgoingContract(
		ctx context.Context, contractId domain.ContractId,
		preimage lntypes.Preimage,
	) (wire.OutPoint, error)
	AbortOutgoingPayment(ctx context.Context, contractId domain.ContractId) error
	AwaitOutgoingContractClaimed(
		ctx context.Context, contractId domain.ContractId, outpoint wire.OutPoint,
	) error

	OfferExists(ctx context.Context, paymentHash lntypes.Hash) (bool, error)
	BuyPreimageOffer(
		ctx context.Context, paymentHash lntypes.Hash, amount domain.Amount,
	) (wire.OutPoint, domain.ContractId, error)
	AwaitPreimageDecryption(
		ctx context.Context, outpoint wire.OutPoint,
	) (lntypes.Preimage, error)
	RefundIncomingContract(
		ctx context.Context, contractId domain.ContractId,
	) (wire.OutPoint, error)

	FetchAllNotes(ctx context.Context) error
	TotalNotesAmount(ctx context.Context) (domain.Amount, error)
	BackupNotes(ctx context.Context) error
	RestoreNotes(ctx context.Context, gapLimit int) ([]RecoveryTask, error)

	GetNewPegInAddress(ctx context.Context) (btcutil.Address, error)
	PegIn(
		ctx context.Context, proof domain.TxOutProof, tx *wire.MsgTx,
	) (chainhash.Hash, error)
	NewPegOutWithFees(
		ctx context.Context, amount btcutil.Amount, address btcutil.Address,
	) (*domain.PegOut, error)
	PegOut(ctx context.Context, pegOut domain.PegOut) (wire.OutPoint, error)
}
