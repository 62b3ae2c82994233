package admin

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context.
type TestContext interface {
	EnsureAccount(alias string) error
	POSTAs(alias, path string, body any) error
	Status() int
}

// RegisterSteps registers admin surface steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^the registry prices years at (\d+) with renewal multiplier (\d+)$`, steps.normalizePricing)
	ctx.Step(`^the admin sets the price per year to (\d+)$`, steps.adminSetsPrice)
	ctx.Step(`^the admin sets the renewal multiplier to (\d+)$`, steps.adminSetsMultiplier)
	ctx.Step(`^"([^"]*)" sets the price per year to (\d+)$`, steps.callerSetsPrice)
	ctx.Step(`^the admin pauses the registry$`, steps.adminPauses)
	ctx.Step(`^the admin unpauses the registry$`, steps.adminUnpauses)
	ctx.Step(`^the admin withdraws the balance$`, steps.adminWithdraws)
}

type adminSteps struct {
	tc TestContext
}

// normalizePricing pins the pricing every scenario assumes, so feature
// order and leftover state from earlier runs cannot skew expectations.
func (s *adminSteps) normalizePricing(price, multiplier int) error {
	if err := s.adminSetsPrice(price); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("seeding price failed with status %d, is the admin account right?", s.tc.Status())
	}
	if err := s.adminSetsMultiplier(multiplier); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("seeding multiplier failed with status %d", s.tc.Status())
	}
	return nil
}

func (s *adminSteps) adminSetsPrice(price int) error {
	return s.tc.POSTAs("admin", "/admin/price", map[string]any{"price_per_year": price})
}

func (s *adminSteps) adminSetsMultiplier(multiplier int) error {
	return s.tc.POSTAs("admin", "/admin/multiplier", map[string]any{"renewal_multiplier": multiplier})
}

func (s *adminSteps) callerSetsPrice(alias string, price int) error {
	if err := s.tc.EnsureAccount(alias); err != nil {
		return err
	}
	return s.tc.POSTAs(alias, "/admin/price", map[string]any{"price_per_year": price})
}

func (s *adminSteps) adminPauses() error {
	return s.tc.POSTAs("admin", "/admin/pause", nil)
}

func (s *adminSteps) adminUnpauses() error {
	return s.tc.POSTAs("admin", "/admin/unpause", nil)
}

func (s *adminSteps) adminWithdraws() error {
	return s.tc.POSTAs("admin", "/admin/withdraw", nil)
}
