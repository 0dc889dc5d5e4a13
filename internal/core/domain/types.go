package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnwire"
)

// Amount is the millisatoshi-denominated value used for every Lightning and
// federation amount handled by the gateway.
type Amount = lnwire.MilliSatoshi

// ContractId identifies a contract held by the federation.
type ContractId [32]byte

func (c ContractId) String() string {
	return hex.EncodeToString(c[:])
}

func ContractIdFromString(s string) (ContractId, error) {
	var id ContractId

	buf, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid contract id: %s", err)
	}
	if len(buf) != len(id) {
		return id, fmt.Errorf(
			"invalid contract id length: got %d, expected %d", len(buf), len(id),
		)
	}
	copy(id[:], buf)
	return id, nil
}

// TxOutProof is the serialized merkle proof that a peg-in transaction was
// included in a block.
type TxOutProof []byte

type FederationInfo struct {
	FederationId string
	MintPubkey   *btcec.PublicKey
}

// LightningMode holds the credentials needed to connect to a lightning node.
type LightningMode struct {
	Host         string
	TLSCertPath  string
	MacaroonPath string
}

// LightningReconnectPayload asks the supervising process to re-establish the
// connection with the lightning node. A nil NodeType means the credentials
// already in use must be reused.
type LightningReconnectPayload struct {
	NodeType *LightningMode
}
