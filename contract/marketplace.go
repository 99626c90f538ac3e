package contract

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Marketplace is the set of contract calls the smoke run drives.
type Marketplace interface {
	RegisterUser(ctx rcontext.RequestContext, actor *bind.TransactOpts, name string, email string, ipfsHash string, role Role) error
	VerifyUser(ctx rcontext.RequestContext, actor *bind.TransactOpts, user common.Address) error
	CreateTourPackage(ctx rcontext.RequestContext, actor *bind.TransactOpts, pkg TourPackageInput) error
	CreateBooking(ctx rcontext.RequestContext, actor *bind.TransactOpts, booking BookingInput, value *big.Int) error
	GetUserProfile(ctx rcontext.RequestContext, user common.Address) (*UserProfile, error)
	GetAllActivePackages(ctx rcontext.RequestContext) ([]TourPackage, error)
	GetUserBookings(ctx rcontext.RequestContext, user common.Address) ([]Booking, error)
}

// BoundMarketplace talks to a deployed marketplace contract through its ABI.
type BoundMarketplace struct {
	Address  common.Address
	artifact *Artifact
	backend  Backend
	contract *bind.BoundContract
}

var _ Marketplace = (*BoundMarketplace)(nil)

func NewBoundMarketplace(address common.Address, artifact *Artifact, backend Backend) *BoundMarketplace {
	return &BoundMarketplace{
		Address:  address,
		artifact: artifact,
		backend:  backend,
		contract: bind.NewBoundContract(address, artifact.Abi, backend, backend, backend),
	}
}

func (m *BoundMarketplace) transact(ctx rcontext.RequestContext, actor *bind.TransactOpts, value *big.Int, method string, args ...interface{}) error {
	abiMethod, ok := m.artifact.Abi.Methods[method]
	if !ok {
		return errors.Errorf("contract has no method %q", method)
	}
	args, err := coerceArgs(abiMethod, args)
	if err != nil {
		return err
	}

	ctx = ctx.LogWithFields(logrus.Fields{"method": method, "from": actor.From.Hex()})
	opts := withContext(actor, ctx)
	opts.Value = value

	tx, err := m.contract.Transact(opts, method, args...)
	if err != nil {
		metrics.ContractTransactions.WithLabelValues(method, "error").Inc()
		return errors.Wrap(err, method)
	}
	receipt, err := bind.WaitMined(ctx, m.backend, tx)
	if err != nil {
		metrics.ContractTransactions.WithLabelValues(method, "error").Inc()
		return errors.Wrap(err, "waiting for "+method)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.ContractTransactions.WithLabelValues(method, "reverted").Inc()
		return errors.Errorf("%s reverted in transaction %s", method, tx.Hash().Hex())
	}

	metrics.ContractTransactions.WithLabelValues(method, "ok").Inc()
	ctx.Log.Debugf("%s mined in block %s, gas used %d", method, receipt.BlockNumber, receipt.GasUsed)
	return nil
}

func (m *BoundMarketplace) call(ctx rcontext.RequestContext, method string, args ...interface{}) (interface{}, error) {
	abiMethod, ok := m.artifact.Abi.Methods[method]
	if !ok {
		return nil, errors.Errorf("contract has no method %q", method)
	}
	args, err := coerceArgs(abiMethod, args)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err = m.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, errors.Wrap(err, method)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("%s returned nothing", method)
	}
	return out[0], nil
}

func (m *BoundMarketplace) RegisterUser(ctx rcontext.RequestContext, actor *bind.TransactOpts, name string, email string, ipfsHash string, role Role) error {
	return m.transact(ctx, actor, nil, "registerUser", name, email, ipfsHash, big.NewInt(int64(role)))
}

func (m *BoundMarketplace) VerifyUser(ctx rcontext.RequestContext, actor *bind.TransactOpts, user common.Address) error {
	return m.transact(ctx, actor, nil, "verifyUser", user)
}

func (m *BoundMarketplace) CreateTourPackage(ctx rcontext.RequestContext, actor *bind.TransactOpts, pkg TourPackageInput) error {
	return m.transact(ctx, actor, nil, "createTourPackage",
		pkg.Title, pkg.Description, pkg.Location, pkg.Languages, pkg.Specialties,
		pkg.PricePerPerson, pkg.MaxParticipants, pkg.DurationHours)
}

func (m *BoundMarketplace) CreateBooking(ctx rcontext.RequestContext, actor *bind.TransactOpts, booking BookingInput, value *big.Int) error {
	return m.transact(ctx, actor, value, "createBooking",
		booking.PackageId, booking.Date, booking.Participants, booking.MeetingPoint, booking.SpecialRequests)
}

func (m *BoundMarketplace) GetUserProfile(ctx rcontext.RequestContext, user common.Address) (*UserProfile, error) {
	out, err := m.call(ctx, "getUserProfile", user)
	if err != nil {
		return nil, err
	}
	return decodeUserProfile(reflect.ValueOf(out), user)
}

func (m *BoundMarketplace) GetAllActivePackages(ctx rcontext.RequestContext) ([]TourPackage, error) {
	out, err := m.call(ctx, "getAllActivePackages")
	if err != nil {
		return nil, err
	}
	items, err := sliceOf(out)
	if err != nil {
		return nil, err
	}
	packages := make([]TourPackage, 0, len(items))
	for _, item := range items {
		p, err := decodeTourPackage(item)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, nil
}

func (m *BoundMarketplace) GetUserBookings(ctx rcontext.RequestContext, user common.Address) ([]Booking, error) {
	out, err := m.call(ctx, "getUserBookings", user)
	if err != nil {
		return nil, err
	}
	items, err := sliceOf(out)
	if err != nil {
		return nil, err
	}
	bookings := make([]Booking, 0, len(items))
	for _, item := range items {
		b, err := decodeBooking(item)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

func decodeUserProfile(v reflect.Value, user common.Address) (*UserProfile, error) {
	name, err := fieldString(v, "name")
	if err != nil {
		return nil, err
	}
	role, err := fieldBig(v, "role")
	if err != nil {
		return nil, err
	}
	verified, err := fieldBool(v, "isVerified")
	if err != nil {
		return nil, err
	}
	return &UserProfile{
		Address:    user,
		Name:       name,
		Email:      optional(fieldString(v, "email")),
		IpfsHash:   optional(fieldString(v, "ipfsHash")),
		Role:       Role(role.Uint64()),
		IsVerified: verified,
	}, nil
}

func decodeTourPackage(v reflect.Value) (*TourPackage, error) {
	title, err := fieldString(v, "title")
	if err != nil {
		return nil, err
	}
	return &TourPackage{
		Id:             optional(fieldBig(v, "id")),
		Guide:          optional(fieldAddress(v, "guide")),
		Title:          title,
		Location:       optional(fieldString(v, "location")),
		PricePerPerson: optional(fieldBig(v, "pricePerPerson")),
		IsActive:       optional(fieldBool(v, "isActive")),
	}, nil
}

func decodeBooking(v reflect.Value) (*Booking, error) {
	total, err := fieldBig(v, "totalPrice")
	if err != nil {
		return nil, err
	}
	return &Booking{
		Id:           optional(fieldBig(v, "id")),
		PackageId:    optional(fieldBig(v, "packageId")),
		Tourist:      optional(fieldAddress(v, "tourist")),
		Participants: optional(fieldBig(v, "participants")),
		TotalPrice:   total,
	}, nil
}
