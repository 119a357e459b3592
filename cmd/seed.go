package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
)

var (
	vehicleTypes = []string{"bike", "motorcycle", "car", "van"}
	categories   = []string{"wash-fold", "dry-cleaning", "ironing", "bedding"}
)

// SeedOptions sizes a fixture data set.
type SeedOptions struct {
	Drivers int
	Online  int
	Orders  int
	Seed    int64
}

// Seeder fills a store with fake drivers and ready orders for demos and load
// tests. Drivers go through the registration use case; orders are written
// straight to the orders table, which the service only reads.
type Seeder struct {
	root *CompositionRoot
	out  io.Writer
}

func NewSeeder(root *CompositionRoot, out io.Writer) *Seeder {
	return &Seeder{root: root, out: out}
}

// Seed creates the drivers and orders, opening a shift for the first
// opts.Online drivers.
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) error {
	ctx = kernel.WithPrincipal(ctx, kernel.SystemPrincipal())
	fake := faker.NewWithSeed(rand.NewSource(opts.Seed))

	create := s.root.CreateCreateDriverCommandHandler()
	startShift := s.root.CreateStartDriverShiftCommandHandler()

	bar := progressbar.NewOptions(opts.Drivers,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("drivers"),
		progressbar.OptionShowCount(),
	)
	for i := range opts.Drivers {
		preferences := driver.DefaultPreferences()
		cmd, err := commands.NewCreateDriverCommand(driver.Profile{
			Name:  fake.Person().Name(),
			Phone: fake.Phone().Number(),
			Email: fake.Internet().Email(),
			Vehicle: driver.Vehicle{
				Type:  vehicleTypes[fake.IntBetween(0, len(vehicleTypes)-1)],
				Plate: fake.Car().Plate(),
			},
			Preferences: &preferences,
		})
		if err != nil {
			return fmt.Errorf("driver %d: %w", i, err)
		}
		snapshot, err := create.Handle(ctx, cmd)
		if err != nil {
			return fmt.Errorf("driver %d: %w", i, err)
		}

		if i < opts.Online {
			shiftCmd, shiftErr := commands.NewStartDriverShiftCommand(snapshot.ID)
			if shiftErr != nil {
				return shiftErr
			}
			if _, shiftErr = startShift.Handle(ctx, shiftCmd); shiftErr != nil {
				return fmt.Errorf("driver %d shift: %w", i, shiftErr)
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	bar = progressbar.NewOptions(opts.Orders,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("orders"),
		progressbar.OptionShowCount(),
	)
	for i := range opts.Orders {
		total := kernel.MoneyFromFloat(float64(fake.IntBetween(1500, 25000)) / 100)
		o, err := order.Restore(kernel.NewUUID(),
			fake.Address().StreetAddress()+", "+fake.Address().City(),
			total, categories[fake.IntBetween(0, len(categories)-1)], "ready", nil)
		if err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
		if err = s.root.orders.Add(ctx, o); err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	_, _ = fmt.Fprintf(s.out, "\nseeded %d drivers (%d online) and %d orders\n", opts.Drivers, opts.Online, opts.Orders)
	return nil
}
