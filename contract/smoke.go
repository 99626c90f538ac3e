package contract

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Actors struct {
	Owner   *bind.TransactOpts
	Tourist *bind.TransactOpts
	Guide   *bind.TransactOpts
}

func (a Actors) validate() error {
	if a.Owner == nil || a.Tourist == nil || a.Guide == nil {
		return errors.New("smoke run needs owner, tourist and guide accounts")
	}
	if a.Tourist.From == a.Guide.From || a.Owner.From == a.Tourist.From || a.Owner.From == a.Guide.From {
		return errors.New("smoke run needs three distinct accounts")
	}
	return nil
}

// StepError names the smoke step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("smoke step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Sample data driven through the marketplace.
var (
	SmokeTourPrice        = "0.1"
	SmokeParticipants     = big.NewInt(2)
	SmokeMaxParticipants  = big.NewInt(2)
	SmokeTourDurationHour = big.NewInt(8)
)

// RunSmoke registers a tourist and a guide, verifies the guide, lists a tour
// and books it, checking the contract's state after every step.
func RunSmoke(ctx rcontext.RequestContext, m Marketplace, actors Actors) error {
	if err := actors.validate(); err != nil {
		return err
	}

	step := func(name string, fn func() error) error {
		log := ctx.Log.WithField("step", name)
		log.Info("Running")
		if err := fn(); err != nil {
			log.Error("Failed: ", err)
			return &StepError{Step: name, Err: err}
		}
		log.Info("Passed")
		return nil
	}

	if err := step("register tourist", func() error {
		if err := m.RegisterUser(ctx, actors.Tourist, "John Tourist", "john@email.com", "ipfs_tourist", RoleTourist); err != nil {
			return err
		}
		user, err := m.GetUserProfile(ctx, actors.Tourist.From)
		if err != nil {
			return err
		}
		return expectProfile(user, "John Tourist", RoleTourist, true)
	}); err != nil {
		return err
	}

	if err := step("register guide", func() error {
		if err := m.RegisterUser(ctx, actors.Guide, "Alice Guide", "alice@email.com", "ipfs_guide", RoleGuide); err != nil {
			return err
		}
		user, err := m.GetUserProfile(ctx, actors.Guide.From)
		if err != nil {
			return err
		}
		return expectProfile(user, "Alice Guide", RoleGuide, false)
	}); err != nil {
		return err
	}

	if err := step("verify guide", func() error {
		if err := m.VerifyUser(ctx, actors.Owner, actors.Guide.From); err != nil {
			return err
		}
		user, err := m.GetUserProfile(ctx, actors.Guide.From)
		if err != nil {
			return err
		}
		return expectProfile(user, "Alice Guide", RoleGuide, true)
	}); err != nil {
		return err
	}

	price, err := Ether(SmokeTourPrice)
	if err != nil {
		return err
	}
	var packageId *big.Int
	if err = step("create tour package", func() error {
		before, err := m.GetAllActivePackages(ctx)
		if err != nil {
			return err
		}
		err = m.CreateTourPackage(ctx, actors.Guide, TourPackageInput{
			Title:           "Bali Nature Tour",
			Description:     "Amazing nature experience in Bali",
			Location:        "Bali, Indonesia",
			Languages:       []string{"English", "Indonesian"},
			Specialties:     []string{"Nature", "Food"},
			PricePerPerson:  price,
			MaxParticipants: SmokeMaxParticipants,
			DurationHours:   SmokeTourDurationHour,
		})
		if err != nil {
			return err
		}
		after, err := m.GetAllActivePackages(ctx)
		if err != nil {
			return err
		}
		if len(after) != len(before)+1 {
			return errors.Errorf("expected %d active packages, found %d", len(before)+1, len(after))
		}
		created := after[len(after)-1]
		if created.Title != "Bali Nature Tour" {
			return errors.Errorf("expected package title %q, found %q", "Bali Nature Tour", created.Title)
		}
		packageId = created.Id
		if packageId == nil || packageId.Sign() == 0 {
			// ids are 1-based and follow listing order
			packageId = big.NewInt(int64(len(after)))
		}
		return nil
	}); err != nil {
		return err
	}

	payment, err := BookingPayment(price, SmokeParticipants)
	if err != nil {
		return err
	}
	return step("create booking", func() error {
		ctx.Log.WithFields(logrus.Fields{
			"price":   FormatEther(payment.Price),
			"deposit": FormatEther(payment.Deposit),
			"total":   FormatEther(payment.Total),
		}).Info("Booking payment")
		before, err := m.GetUserBookings(ctx, actors.Tourist.From)
		if err != nil {
			return err
		}
		err = m.CreateBooking(ctx, actors.Tourist, BookingInput{
			PackageId:       packageId,
			Date:            big.NewInt(time.Now().Add(time.Hour).Unix()),
			Participants:    SmokeParticipants,
			MeetingPoint:    "Test Meeting Point",
			SpecialRequests: "No special requests",
		}, payment.Total)
		if err != nil {
			return err
		}
		after, err := m.GetUserBookings(ctx, actors.Tourist.From)
		if err != nil {
			return err
		}
		if len(after) != len(before)+1 {
			return errors.Errorf("expected %d bookings, found %d", len(before)+1, len(after))
		}
		if got := after[len(after)-1].TotalPrice; got == nil || got.Cmp(payment.Price) != 0 {
			return errors.Errorf("expected booking total price %s, found %s", payment.Price, got)
		}
		return nil
	})
}

func expectProfile(user *UserProfile, name string, role Role, verified bool) error {
	if user.Name != name {
		return errors.Errorf("expected name %q, found %q", name, user.Name)
	}
	if user.Role != role {
		return errors.Errorf("expected role %s, found %s", role, user.Role)
	}
	if user.IsVerified != verified {
		return errors.Errorf("expected verified=%t, found %t", verified, user.IsVerified)
	}
	return nil
}
