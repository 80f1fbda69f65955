package asset

// WalletTrait is a bitset indicating optional wallet properties, such as if the
// wallet was restored from an existing seed.
type WalletTrait uint64

const (
	WalletTraitRestored WalletTrait = 1 << iota // The Wallet was restored from a seed.
)

// IsRestored is true if the wallet was restored rather than created.
func (t WalletTrait) IsRestored() bool {
	return t&WalletTraitRestored == WalletTraitRestored
}
