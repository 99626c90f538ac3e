package contract

import (
	"context"
	"math/big"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileTuple struct {
	Wallet     common.Address
	Name       string
	Email      string
	IpfsHash   string
	Role       uint8
	IsVerified bool
	Rating     *big.Int
}

type packageTuple struct {
	Id             *big.Int
	Guide          common.Address
	Title          string
	Location       string
	PricePerPerson *big.Int
	IsActive       bool
}

type bookingTuple struct {
	Id              *big.Int
	PackageId       *big.Int
	Tourist         common.Address
	Participants    *big.Int
	TotalPrice      *big.Int
	SecurityDeposit *big.Int
}

// fakeCaller answers read-only calls with pre-packed results. Any other
// backend method panics on the nil embedded interface.
type fakeCaller struct {
	Backend
	abi     abi.ABI
	results map[string][]byte
	calls   []string
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, m.Name)
	return f.results[m.Name], nil
}

func (f *fakeCaller) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0}, nil
}

func loadMarketplaceArtifact(t *testing.T) *Artifact {
	a, err := LoadArtifact(filepath.Join("testdata", "Marketplace.json"))
	require.NoError(t, err)
	return a
}

func packResult(t *testing.T, a *Artifact, method string, v interface{}) []byte {
	b, err := a.Abi.Methods[method].Outputs.Pack(v)
	require.NoError(t, err)
	return b
}

func TestCoerceArgs(t *testing.T) {
	a := loadMarketplaceArtifact(t)

	args, err := coerceArgs(a.Abi.Methods["registerUser"], []interface{}{"n", "e", "h", big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, uint8(1), args[3])
	assert.Equal(t, "n", args[0])

	args, err = coerceArgs(a.Abi.Methods["createBooking"], []interface{}{big.NewInt(1), big.NewInt(2), big.NewInt(3), "m", "s"})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), args[2])

	_, err = coerceArgs(a.Abi.Methods["registerUser"], []interface{}{"n", "e", "h", big.NewInt(256)})
	assert.Error(t, err)
	_, err = coerceArgs(a.Abi.Methods["registerUser"], []interface{}{"n", "e", "h", big.NewInt(-1)})
	assert.Error(t, err)
	_, err = coerceArgs(a.Abi.Methods["registerUser"], []interface{}{big.NewInt(1), "e", "h", big.NewInt(0)})
	assert.Error(t, err)
	_, err = coerceArgs(a.Abi.Methods["verifyUser"], nil)
	assert.Error(t, err)
}

func TestCoerceIntegerBounds(t *testing.T) {
	int8Ty, err := abi.NewType("int8", "", nil)
	require.NoError(t, err)
	uint8Ty, err := abi.NewType("uint8", "", nil)
	require.NoError(t, err)
	int256Ty, err := abi.NewType("int256", "", nil)
	require.NoError(t, err)

	v, err := coerce(int8Ty, big.NewInt(-128))
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)
	v, err = coerce(int8Ty, big.NewInt(127))
	require.NoError(t, err)
	assert.Equal(t, int8(127), v)
	_, err = coerce(int8Ty, big.NewInt(128))
	assert.Error(t, err)
	_, err = coerce(int8Ty, big.NewInt(-129))
	assert.Error(t, err)

	v, err = coerce(uint8Ty, big.NewInt(255))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v)

	minInt256 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	v, err = coerce(int256Ty, minInt256)
	require.NoError(t, err)
	assert.Equal(t, minInt256, v)
	_, err = coerce(int256Ty, new(big.Int).Sub(minInt256, big.NewInt(1)))
	assert.Error(t, err)
}

func TestBoundMarketplaceReads(t *testing.T) {
	a := loadMarketplaceArtifact(t)
	tourist := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	guide := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	price := ether(t, "0.1")

	backend := &fakeCaller{
		abi: a.Abi,
		results: map[string][]byte{
			"getUserProfile": packResult(t, a, "getUserProfile", profileTuple{
				Wallet: tourist, Name: "John Tourist", Email: "john@email.com", IpfsHash: "ipfs_tourist",
				Role: uint8(RoleTourist), IsVerified: true, Rating: big.NewInt(0),
			}),
			"getAllActivePackages": packResult(t, a, "getAllActivePackages", []packageTuple{{
				Id: big.NewInt(1), Guide: guide, Title: "Bali Nature Tour", Location: "Bali, Indonesia",
				PricePerPerson: price, IsActive: true,
			}}),
			"getUserBookings": packResult(t, a, "getUserBookings", []bookingTuple{{
				Id: big.NewInt(1), PackageId: big.NewInt(1), Tourist: tourist, Participants: big.NewInt(2),
				TotalPrice: ether(t, "0.2"), SecurityDeposit: ether(t, "0.02"),
			}}),
		},
	}
	m := NewBoundMarketplace(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), a, backend)
	ctx := rcontext.Initial()

	user, err := m.GetUserProfile(ctx, tourist)
	require.NoError(t, err)
	assert.Equal(t, &UserProfile{
		Address:    tourist,
		Name:       "John Tourist",
		Email:      "john@email.com",
		IpfsHash:   "ipfs_tourist",
		Role:       RoleTourist,
		IsVerified: true,
	}, user)

	packages, err := m.GetAllActivePackages(ctx)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, "Bali Nature Tour", packages[0].Title)
	assert.Equal(t, guide, packages[0].Guide)
	assert.Equal(t, big.NewInt(1), packages[0].Id)
	assert.Equal(t, price, packages[0].PricePerPerson)
	assert.True(t, packages[0].IsActive)

	bookings, err := m.GetUserBookings(ctx, tourist)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, ether(t, "0.2"), bookings[0].TotalPrice)
	assert.Equal(t, tourist, bookings[0].Tourist)

	assert.Equal(t, []string{"getUserProfile", "getAllActivePackages", "getUserBookings"}, backend.calls)
}

func TestBoundMarketplaceUnknownMethod(t *testing.T) {
	a, err := LoadArtifact(filepath.Join("testdata", "Stub.json"))
	require.NoError(t, err)
	m := NewBoundMarketplace(common.Address{}, a, &fakeCaller{abi: a.Abi})

	_, err = m.GetAllActivePackages(rcontext.Initial())
	assert.ErrorContains(t, err, "no method")
}

func TestDecodeMissingRequiredField(t *testing.T) {
	type partial struct{ Name string }
	_, err := decodeUserProfile(reflect.ValueOf(partial{Name: "x"}), common.Address{})
	assert.ErrorContains(t, err, "role")
}
