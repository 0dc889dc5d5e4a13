package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPreimageLength = errors.New("invalid preimage length")
	ErrPreimageMismatch      = errors.New("preimage does not match payment hash")
	ErrUnknownBuyPreimage    = errors.New("unknown buy preimage variant")
	ErrUnexpectedChannel     = errors.New("htlc intercepted on unexpected channel")
	ErrZeroAmountHtlc        = errors.New("htlc has zero outgoing amount")
	ErrMissingRedeemKey      = errors.New("federation config has no redeem key")
)

type errSettleHtlc struct {
	htlcId string
	err    error
}

func (e errSettleHtlc) Error() string {
	return fmt.Sprintf(
		"failed to settle htlc %s after preimage release: %s", e.htlcId, e.err,
	)
}

func (e errSettleHtlc) Unwrap() error {
	return e.err
}
