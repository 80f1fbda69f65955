package asset

import (
	"fmt"
	"strings"
)

// Network flags passed to the wallet engine to signify which network to use.
type Network uint8

const (
	Mainnet Network = iota
	Testnet
	Stagenet
)

// String returns the string representation of a Network.
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Stagenet:
		return "stagenet"
	}
	return ""
}

// NetFromString returns the Network for the given network name.
func NetFromString(net string) (Network, error) {
	switch strings.ToLower(net) {
	case "mainnet", "":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	case "stagenet":
		return Stagenet, nil
	}
	return 255, fmt.Errorf("unknown network %s", net)
}
