package ipfs

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var rawPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// LocalCID returns the CIDv1 (raw, sha2-256) of data. It equals the network
// CID only for single-block uploads, so it is used as a dedup key, not as
// the address returned to callers.
func LocalCID(data []byte) (string, error) {
	c, err := rawPrefix.Sum(data)
	if err != nil {
		return "", err
	}

	return c.String(), nil
}

func ValidateCID(s string) error {
	_, err := cid.Decode(s)
	return err
}
