package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Role uint8

const (
	RoleTourist Role = 0
	RoleGuide   Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleTourist:
		return "tourist"
	case RoleGuide:
		return "guide"
	}
	return "unknown"
}

type UserProfile struct {
	Address    common.Address
	Name       string
	Email      string
	IpfsHash   string
	Role       Role
	IsVerified bool
}

type TourPackageInput struct {
	Title           string
	Description     string
	Location        string
	Languages       []string
	Specialties     []string
	PricePerPerson  *big.Int
	MaxParticipants *big.Int
	DurationHours   *big.Int
}

type TourPackage struct {
	Id             *big.Int
	Guide          common.Address
	Title          string
	Location       string
	PricePerPerson *big.Int
	IsActive       bool
}

type BookingInput struct {
	PackageId       *big.Int
	Date            *big.Int
	Participants    *big.Int
	MeetingPoint    string
	SpecialRequests string
}

type Booking struct {
	Id           *big.Int
	PackageId    *big.Int
	Tourist      common.Address
	Participants *big.Int
	TotalPrice   *big.Int
}
