package contract

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/explormate/explormate-chain/common/config"
	"github.com/pkg/errors"
)

// Backend is everything the tooling needs from a node. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Dial connects to the network's JSON-RPC endpoint.
func Dial(ctx context.Context, network config.NetworkConfig) (*ethclient.Client, error) {
	if network.Url == "" {
		return nil, errors.New("network has no RPC url")
	}
	if network.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(network.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	client, err := ethclient.DialContext(ctx, network.Url)
	return client, errors.Wrap(err, "dialing "+network.Url)
}

// ChainId asks the node for its chain id and checks it against the configured
// one, when there is one.
func ChainId(ctx context.Context, backend Backend, network config.NetworkConfig) (*big.Int, error) {
	chainId, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading chain id")
	}
	if network.ChainId != 0 && chainId.Cmp(big.NewInt(network.ChainId)) != 0 {
		return nil, errors.Errorf("node reports chain id %s, configuration expects %d", chainId, network.ChainId)
	}
	return chainId, nil
}

func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("no private key configured")
	}
	key, err := crypto.HexToECDSA(hexKey)
	return key, errors.Wrap(err, "parsing private key")
}

// Signer builds transaction options for hexKey on chainId.
func Signer(ctx context.Context, hexKey string, chainId *big.Int) (*bind.TransactOpts, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainId)
	if err != nil {
		return nil, errors.Wrap(err, "creating transactor")
	}
	opts.Context = ctx
	return opts, nil
}

func AddressOf(hexKey string) (common.Address, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// Session is a connected backend plus the deployer's signer.
type Session struct {
	Backend  Backend
	ChainId  *big.Int
	Deployer *bind.TransactOpts
	Network  config.NetworkConfig
}

// NewSession resolves the chain id and builds the deployer's transactor.
func NewSession(ctx context.Context, backend Backend, network config.NetworkConfig, privateKey string) (*Session, error) {
	chainId, err := ChainId(ctx, backend, network)
	if err != nil {
		return nil, err
	}
	deployer, err := Signer(ctx, privateKey, chainId)
	if err != nil {
		return nil, err
	}
	return &Session{
		Backend:  backend,
		ChainId:  chainId,
		Deployer: deployer,
		Network:  network,
	}, nil
}

// Signer builds a transactor for another account on the session's chain.
func (s *Session) Signer(ctx context.Context, hexKey string) (*bind.TransactOpts, error) {
	return Signer(ctx, hexKey, s.ChainId)
}
