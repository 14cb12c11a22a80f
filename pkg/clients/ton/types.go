package tonclient

import (
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

// Transaction is a contract transaction reduced to what the listing flow
// reads: the inbound internal message and the emitted external-out events.
type Transaction struct {
	Hash      []byte
	LT        uint64
	From      *address.Address
	Body      *cell.Cell
	Bounced   bool
	Events    []*cell.Cell
	CreatedAt time.Time
}

// Cursor points at the transaction a listing continues from, going back in
// time.
type Cursor struct {
	LT   uint64
	Hash []byte
}

type SentMessage struct {
	Hash []byte
	From *address.Address
}
