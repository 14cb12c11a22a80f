package tonclient

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

const (
	// messageTTL is how long, in seconds, the highload wallet accepts a signed
	// message and remembers its query id.
	messageTTL = 120

	// Liteservers emulate externals at block time, so creation time must not
	// be ahead of the last block.
	createdAtLag = 30 * time.Second

	maxWalletQueryID = 1 << 23
	bitNumberMask    = 1<<10 - 1
)

// walletQueries hands out highload wallet query ids. Every signed message gets
// its own id, so concurrent sends never compete for a seqno.
type walletQueries struct {
	next atomic.Uint32
	now  func() time.Time
}

func newWalletQueries() *walletQueries {
	q := &walletQueries{now: time.Now}
	q.next.Store(rand.Uint32N(maxWalletQueryID))
	return q
}

func (q *walletQueries) build(_ context.Context, _ uint32) (id uint32, createdAt int64, err error) {
	for {
		id = q.next.Add(1) % maxWalletQueryID
		// bit number 1023 does not fit the contract's bitmap cell
		if id&bitNumberMask != bitNumberMask {
			break
		}
	}

	return id, q.now().Add(-createdAtLag).Unix(), nil
}
