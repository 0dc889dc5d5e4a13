package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ark-network/ln-gateway/internal/core/application"
	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetryPendingSettlements(t *testing.T) {
	ctx := context.Background()
	settleErr := fmt.Errorf("htlc interceptor stream closed")

	t.Run("settled", func(t *testing.T) {
		ta := newTestActor(t, application.DefaultActorConfig())
		repo := ta.repoManager.PendingSettlements()
		settlement := domain.NewPendingSettlement(htlcId, preimage, incomingId, settleErr)
		require.NoError(t, repo.Add(ctx, settlement))
		ta.lightning.On(
			"CompleteHtlc", mock.Anything, domain.NewSettleRequest(htlcId, preimage),
		).Return(nil).Once()

		ta.RetryPendingSettlements(ctx)

		got, err := repo.Get(ctx, paymentHash.String())
		require.NoError(t, err)
		require.Nil(t, got)
		ta.lightning.AssertExpectations(t)
	})

	t.Run("abandoned after max attempts", func(t *testing.T) {
		cfg := application.DefaultActorConfig()
		cfg.SettleMaxAttempts = 3
		ta := newTestActor(t, cfg)
		repo := ta.repoManager.PendingSettlements()
		settlement := domain.NewPendingSettlement(htlcId, preimage, incomingId, settleErr)
		require.NoError(t, repo.Add(ctx, settlement))
		ta.lightning.On("CompleteHtlc", mock.Anything, mock.Anything).
			Return(fmt.Errorf("unknown htlc"))

		ta.RetryPendingSettlements(ctx)

		got, err := repo.Get(ctx, paymentHash.String())
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, 2, got.Attempts)
		require.Equal(t, "unknown htlc", got.LastError)
		require.False(t, got.Abandoned)

		ta.RetryPendingSettlements(ctx)

		got, err = repo.Get(ctx, paymentHash.String())
		require.NoError(t, err)
		require.Equal(t, 3, got.Attempts)
		require.True(t, got.Abandoned)

		// Abandoned settlements are left for manual reclaim.
		ta.RetryPendingSettlements(ctx)
		ta.lightning.AssertNumberOfCalls(t, "CompleteHtlc", 2)
	})

	t.Run("resolved by replay meanwhile", func(t *testing.T) {
		ta := newTestActor(t, application.DefaultActorConfig())
		repo := ta.repoManager.PendingSettlements()
		settlement := domain.NewPendingSettlement(htlcId, preimage, incomingId, settleErr)
		require.NoError(t, repo.Add(ctx, settlement))

		replayedId := domain.HtlcId{ChanId: 812, HtlcId: 9}
		settling := make(chan struct{}, 1)
		release := make(chan struct{})
		ta.lightning.On(
			"CompleteHtlc", mock.Anything, domain.NewSettleRequest(replayedId, preimage),
		).
			Run(func(mock.Arguments) {
				settling <- struct{}{}
				<-release
			}).
			Return(nil).Once()

		replayed := interceptedHtlc()
		replayed.Id = replayedId
		ta.intercept(replayed)
		waitFor(t, settling)

		retried := make(chan struct{})
		go func() {
			ta.RetryPendingSettlements(ctx)
			close(retried)
		}()
		time.Sleep(50 * time.Millisecond)
		close(release)
		waitFor(t, retried)

		got, err := repo.Get(ctx, paymentHash.String())
		require.NoError(t, err)
		require.Nil(t, got)
		ta.lightning.AssertNumberOfCalls(t, "CompleteHtlc", 1)
	})

	t.Run("skipped on shutdown", func(t *testing.T) {
		ta := newTestActor(t, application.DefaultActorConfig())
		repo := ta.repoManager.PendingSettlements()
		settlement := domain.NewPendingSettlement(htlcId, preimage, incomingId, settleErr)
		require.NoError(t, repo.Add(ctx, settlement))

		ta.Close()
		ta.RetryPendingSettlements(ctx)

		ta.lightning.AssertNotCalled(t, "CompleteHtlc", mock.Anything, mock.Anything)
	})
}
