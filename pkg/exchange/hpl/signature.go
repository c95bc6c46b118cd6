package hpl

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"hlsimple/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

const verifyingContract = "0x0000000000000000000000000000000000000000"

var nonceCounter int64

func nextNonce() int64 {
	return atomic.AddInt64(&nonceCounter, 1) + time.Now().UnixMilli()
}

// signAction hashes a msgpack-encoded exchange action (with nonce and vault
// marker appended) and signs it as an EIP-712 "Agent" typed message.
func (e *Exchange) signAction(action any, vaultAddress string, nonce int64) (rsvSignature, error) {
	hash, err := hashAction(action, vaultAddress, uint64(nonce))
	if err != nil {
		return rsvSignature{}, err
	}
	message := apitypes.TypedDataMessage{
		"source":       e.signatureSource(),
		"connectionId": hash.Bytes(),
	}
	v, r, s, err := e.signTypedMessage(message)
	if err != nil {
		return rsvSignature{}, err
	}
	return rsvSignature{
		R: hexutil.Encode(r[:]),
		S: hexutil.Encode(s[:]),
		V: v,
	}, nil
}

func (e *Exchange) signatureSource() string {
	if e.isMainnet {
		return "a"
	}
	return "b"
}

func hashAction(action any, vaultAddress string, nonce uint64) (common.Hash, error) {
	data, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fail to pack the action: %v: %v", action, err)
	}

	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	data = append(data, nonceBytes...)
	if vaultAddress == "" {
		data = append(data, []byte("\x00")...)
	} else {
		data = append(data, []byte("\x01")...)
		vaultAddressBytes, err := utils.HexToBytes(vaultAddress)
		if err != nil {
			return common.Hash{}, err
		}
		data = append(data, vaultAddressBytes...)
	}
	return crypto.Keccak256Hash(data), nil
}

func (e *Exchange) signTypedMessage(message apitypes.TypedDataMessage) (byte, [32]byte, [32]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"Agent": []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337), // HPL uses 1337 regardless of testnet/mainnet
			VerifyingContract: verifyingContract,
		},
		Message: message,
	}

	bytes, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, err
	}

	sig, err := crypto.Sign(bytes, e.privKey)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, err
	}
	v, r, s := utils.SignatureToVRS(sig)
	return v, r, s, nil
}
