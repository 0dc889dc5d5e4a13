package domain_test

import (
	"bytes"
	"testing"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestInterceptedHtlc(t *testing.T) {
	t.Run("parse_payment_hash", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			raw := bytes.Repeat([]byte{0x01}, 32)
			htlc := domain.InterceptedHtlc{PaymentHash: raw, OutgoingAmountMsat: 50000}

			hash, err := htlc.ParsePaymentHash()
			require.NoError(t, err)
			require.Equal(t, raw, hash[:])
			require.Equal(t, domain.Amount(50000), htlc.Amount())
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				name string
				hash []byte
			}{
				{"nil", nil},
				{"short", make([]byte, 10)},
				{"long", make([]byte, 33)},
			}

			for _, f := range fixtures {
				t.Run(f.name, func(t *testing.T) {
					htlc := domain.InterceptedHtlc{PaymentHash: f.hash}
					_, err := htlc.ParsePaymentHash()
					require.Error(t, err)
					require.Contains(t, err.Error(), "parse")
				})
			}
		})
	})

	t.Run("complete_requests", func(t *testing.T) {
		id := domain.HtlcId{ChanId: 1, HtlcId: 7}
		require.Equal(t, "1:7", id.String())

		settle := domain.NewSettleRequest(id, preimage)
		action, ok := settle.Action.(domain.SettleAction)
		require.True(t, ok)
		require.Equal(t, preimage, action.Preimage)
		require.Equal(t, id, settle.HtlcId)

		cancel := domain.NewCancelRequest(id, "no route")
		cancelAction, ok := cancel.Action.(domain.CancelAction)
		require.True(t, ok)
		require.Equal(t, "no route", cancelAction.Reason)
	})
}
