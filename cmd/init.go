package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/tlb"
)

const (
	mainnetConfigURL = "https://ton-blockchain.github.io/global.config.json"
	testnetConfigURL = "https://ton-blockchain.github.io/testnet-global.config.json"
)

// liteserverConfigURL picks the global config of network unless an explicit
// override is set.
func liteserverConfigURL(network, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	switch strings.ToLower(network) {
	case "mainnet":
		return mainnetConfigURL, nil
	case "testnet", "":
		return testnetConfigURL, nil
	default:
		return "", fmt.Errorf("unknown network %q", network)
	}
}

func parsePrivateKey(s string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", ed25519.SeedSize, len(seed))
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

func parseCoins(name, s string) (tlb.Coins, error) {
	c, err := tlb.FromTON(s)
	if err != nil {
		return tlb.Coins{}, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}

	return c, nil
}
