package application_test

import (
	"context"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/stretchr/testify/mock"
)

type mockedFederation struct {
	mock.Mock
}

func (m *mockedFederation) Config() domain.GatewayClientConfig {
	args := m.Called()
	return args.Get(0).(domain.GatewayClientConfig)
}

func (m *mockedFederation) RegisterWithFederation(
	ctx context.Context, registration domain.GatewayRegistration,
) error {
	args := m.Called(ctx, registration)
	return args.Error(0)
}

func (m *mockedFederation) FetchOutgoingContract(
	ctx context.Context, contractId domain.ContractId,
) (*domain.OutgoingContractAccount, error) {
	args := m.Called(ctx, contractId)

	var res *domain.OutgoingContractAccount
	if a := args.Get(0); a != nil {
		res = a.(*domain.OutgoingContractAccount)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) ValidateOutgoingAccount(
	ctx context.Context, account domain.OutgoingContractAccount,
) (*domain.PaymentParameters, error) {
	args := m.Called(ctx, account)

	var res *domain.PaymentParameters
	if a := args.Get(0); a != nil {
		res = a.(*domain.PaymentParameters)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) SaveOutgoingPayment(
	ctx context.Context, account domain.OutgoingContractAccount,
) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockedFederation) CancelOutgoingContract(
	ctx context.Context, account domain.OutgoingContractAccount,
) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockedFederation) ClaimOutgoingContract(
	ctx context.Context, contractId domain.ContractId, preimage lntypes.Preimage,
) (wire.OutPoint, error) {
	args := m.Called(ctx, contractId, preimage)

	var res wire.OutPoint
	if a := args.Get(0); a != nil {
		res = a.(wire.OutPoint)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) AbortOutgoingPayment(
	ctx context.Context, contractId domain.ContractId,
) error {
	args := m.Called(ctx, contractId)
	return args.Error(0)
}

func (m *mockedFederation) AwaitOutgoingContractClaimed(
	ctx context.Context, contractId domain.ContractId, outpoint wire.OutPoint,
) error {
	args := m.Called(ctx, contractId, outpoint)
	return args.Error(0)
}

func (m *mockedFederation) OfferExists(
	ctx context.Context, paymentHash lntypes.Hash,
) (bool, error) {
	args := m.Called(ctx, paymentHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockedFederation) BuyPreimageOffer(
	ctx context.Context, paymentHash lntypes.Hash, amount domain.Amount,
) (wire.OutPoint, domain.ContractId, error) {
	args := m.Called(ctx, paymentHash, amount)

	var outpoint wire.OutPoint
	if a := args.Get(0); a != nil {
		outpoint = a.(wire.OutPoint)
	}
	var contractId domain.ContractId
	if a := args.Get(1); a != nil {
		contractId = a.(domain.ContractId)
	}
	return outpoint, contractId, args.Error(2)
}

func (m *mockedFederation) AwaitPreimageDecryption(
	ctx context.Context, outpoint wire.OutPoint,
) (lntypes.Preimage, error) {
	args := m.Called(ctx, outpoint)

	var res lntypes.Preimage
	if a := args.Get(0); a != nil {
		res = a.(lntypes.Preimage)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) RefundIncomingContract(
	ctx context.Context, contractId domain.ContractId,
) (wire.OutPoint, error) {
	args := m.Called(ctx, contractId)

	var res wire.OutPoint
	if a := args.Get(0); a != nil {
		res = a.(wire.OutPoint)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) FetchAllNotes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockedFederation) TotalNotesAmount(ctx context.Context) (domain.Amount, error) {
	args := m.Called(ctx)

	var res domain.Amount
	if a := args.Get(0); a != nil {
		res = a.(domain.Amount)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) BackupNotes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockedFederation) RestoreNotes(
	ctx context.Context, gapLimit int,
) ([]ports.RecoveryTask, error) {
	args := m.Called(ctx, gapLimit)

	var res []ports.RecoveryTask
	if a := args.Get(0); a != nil {
		res = a.([]ports.RecoveryTask)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) GetNewPegInAddress(ctx context.Context) (btcutil.Address, error) {
	args := m.Called(ctx)

	var res btcutil.Address
	if a := args.Get(0); a != nil {
		res = a.(btcutil.Address)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) PegIn(
	ctx context.Context, proof domain.TxOutProof, tx *wire.MsgTx,
) (chainhash.Hash, error) {
	args := m.Called(ctx, proof, tx)

	var res chainhash.Hash
	if a := args.Get(0); a != nil {
		res = a.(chainhash.Hash)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) NewPegOutWithFees(
	ctx context.Context, amount btcutil.Amount, address btcutil.Address,
) (*domain.PegOut, error) {
	args := m.Called(ctx, amount, address)

	var res *domain.PegOut
	if a := args.Get(0); a != nil {
		res = a.(*domain.PegOut)
	}
	return res, args.Error(1)
}

func (m *mockedFederation) PegOut(
	ctx context.Context, pegOut domain.PegOut,
) (wire.OutPoint, error) {
	args := m.Called(ctx, pegOut)

	var res wire.OutPoint
	if a := args.Get(0); a != nil {
		res = a.(wire.OutPoint)
	}
	return res, args.Error(1)
}

type mockedLightning struct {
	mock.Mock
}

func (m *mockedLightning) SubscribeHtlcs(
	ctx context.Context, shortChannelId uint64,
) (<-chan ports.HtlcEvent, error) {
	args := m.Called(ctx, shortChannelId)

	var res <-chan ports.HtlcEvent
	if a := args.Get(0); a != nil {
		res = a.(<-chan ports.HtlcEvent)
	}
	return res, args.Error(1)
}

func (m *mockedLightning) Pay(
	ctx context.Context, req domain.PayInvoiceRequest,
) (*domain.PayInvoiceResponse, error) {
	args := m.Called(ctx, req)

	var res *domain.PayInvoiceResponse
	if a := args.Get(0); a != nil {
		res = a.(*domain.PayInvoiceResponse)
	}
	return res, args.Error(1)
}

func (m *mockedLightning) CompleteHtlc(
	ctx context.Context, req domain.CompleteHtlcRequest,
) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockedLightning) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockedGatewayRpc struct {
	mock.Mock
}

func (m *mockedGatewayRpc) Send(
	ctx context.Context, payload domain.LightningReconnectPayload,
) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type mockedScheduler struct {
	mock.Mock
}

func (m *mockedScheduler) Start() {
	m.Called()
}

func (m *mockedScheduler) Stop() {
	m.Called()
}

func (m *mockedScheduler) ScheduleTask(interval int64, immediate bool, task func()) error {
	args := m.Called(interval, immediate, task)
	return args.Error(0)
}

// inMemoryRepoManager is a map backed ports.RepoManager.
type inMemoryRepoManager struct {
	settlements *inMemorySettlementRepo
	payments    *inMemoryPaymentRepo
}

func newInMemoryRepoManager() *inMemoryRepoManager {
	return &inMemoryRepoManager{
		settlements: &inMemorySettlementRepo{store: map[string]domain.PendingSettlement{}},
		payments:    &inMemoryPaymentRepo{store: map[string]domain.OutgoingPayment{}},
	}
}

func (r *inMemoryRepoManager) PendingSettlements() domain.PendingSettlementRepository {
	return r.settlements
}

func (r *inMemoryRepoManager) OutgoingPayments() domain.OutgoingPaymentRepository {
	return r.payments
}

func (r *inMemoryRepoManager) Close() {}

type inMemorySettlementRepo struct {
	lock  sync.Mutex
	store map[string]domain.PendingSettlement
}

func (r *inMemorySettlementRepo) Add(_ context.Context, s domain.PendingSettlement) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.store[s.PaymentHash] = s
	return nil
}

func (r *inMemorySettlementRepo) Get(
	_ context.Context, paymentHash string,
) (*domain.PendingSettlement, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	s, ok := r.store[paymentHash]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *inMemorySettlementRepo) GetAll(_ context.Context) ([]domain.PendingSettlement, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	list := make([]domain.PendingSettlement, 0, len(r.store))
	for _, s := range r.store {
		list = append(list, s)
	}
	return list, nil
}

func (r *inMemorySettlementRepo) Delete(_ context.Context, paymentHash string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.store, paymentHash)
	return nil
}

func (r *inMemorySettlementRepo) Close() {}

type inMemoryPaymentRepo struct {
	lock  sync.Mutex
	store map[string]domain.OutgoingPayment
}

func (r *inMemoryPaymentRepo) Upsert(_ context.Context, p domain.OutgoingPayment) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.store[p.ContractId] = p
	return nil
}

func (r *inMemoryPaymentRepo) Get(
	_ context.Context, contractId string,
) (*domain.OutgoingPayment, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	p, ok := r.store[contractId]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryPaymentRepo) Close() {}
