package types

// Network is a logical blockchain network name. New networks are added by
// extending the tables below, never by branching on string content in
// calling code.
type Network string

const (
	NetworkBase          Network = "base"
	NetworkBaseSepolia   Network = "base-sepolia" // testnet
	NetworkAvalanche     Network = "avalanche"
	NetworkAvalancheFuji Network = "avalanche-fuji" // testnet
	NetworkSei           Network = "sei"
	NetworkSeiTestnet    Network = "sei-testnet" // testnet
	NetworkIoTeX         Network = "iotex"
	NetworkPolygon       Network = "polygon"
	NetworkPolygonAmoy   Network = "polygon-amoy" // testnet
)

// networkChainIDs maps each supported network 1:1 to its EVM chain id.
var networkChainIDs = map[Network]int64{
	NetworkBase:          8453,
	NetworkBaseSepolia:   84532,
	NetworkAvalanche:     43114,
	NetworkAvalancheFuji: 43113,
	NetworkSei:           1329,
	NetworkSeiTestnet:    1328,
	NetworkIoTeX:         4689,
	NetworkPolygon:       137,
	NetworkPolygonAmoy:   80002,
}

// chainAsset is the default stablecoin for one chain. The EIP-712 name
// differs per deployment ("USD Coin", "USDC", "Bridged USDC") and is
// load-bearing for signature domain separation: it must match the token
// contract exactly or client signatures will not verify.
type chainAsset struct {
	address string
	name    string
}

var chainAssets = map[int64]chainAsset{
	8453:  {address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", name: "USD Coin"},
	84532: {address: "0x036CbD53842c5426634e7929541eC2318f3dCF7e", name: "USDC"},
	43114: {address: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", name: "USD Coin"},
	43113: {address: "0x5425890298aed601595a70AB815c96711a31Bc65", name: "USD Coin"},
	1329:  {address: "0xe15fC38F6D8c56aF07bbCBe3BAf5708A2Bf42392", name: "USDC"},
	1328:  {address: "0x4fCF1784B31630811181f670Aea7A7bEF803eaED", name: "USDC"},
	4689:  {address: "0xcdf79194c6c285077a58da47641d4dbe51f63542", name: "Bridged USDC"},
	137:   {address: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", name: "USD Coin"},
	80002: {address: "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582", name: "USDC"},
}

// stablecoinDecimals is the USDC convention on every supported chain.
const stablecoinDecimals = 6

// defaultEIP712Version is the FiatToken domain version on every supported
// deployment.
const defaultEIP712Version = "2"

// ChainID returns the numeric chain id for the network.
func (n Network) ChainID() (int64, error) {
	id, ok := networkChainIDs[n]
	if !ok {
		return 0, Errorf(ErrUnsupportedNetwork, "unsupported network: %s", n)
	}
	return id, nil
}

// IsSupported reports whether the network is in the registry.
func (n Network) IsSupported() bool {
	_, ok := networkChainIDs[n]
	return ok
}

// IsTestnet reports whether the network is a test network.
func (n Network) IsTestnet() bool {
	switch n {
	case NetworkBaseSepolia, NetworkAvalancheFuji, NetworkSeiTestnet, NetworkPolygonAmoy:
		return true
	}
	return false
}

func (n Network) String() string {
	return string(n)
}

// SupportedNetworks returns every network in the registry.
func SupportedNetworks() []Network {
	networks := make([]Network, 0, len(networkChainIDs))
	for n := range networkChainIDs {
		networks = append(networks, n)
	}
	return networks
}

// GetDefaultAsset resolves the default stablecoin descriptor for a network.
func GetDefaultAsset(network Network) (*AssetDescriptor, error) {
	chainID, err := network.ChainID()
	if err != nil {
		return nil, err
	}

	asset, ok := chainAssets[chainID]
	if !ok {
		return nil, Errorf(ErrUnsupportedNetwork, "no default asset for network %s", network)
	}

	return &AssetDescriptor{
		Address:       asset.address,
		Decimals:      stablecoinDecimals,
		EIP712Name:    asset.name,
		EIP712Version: defaultEIP712Version,
	}, nil
}
