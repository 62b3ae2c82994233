package lease

import (
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context.
type TestContext interface {
	EnsureAccount(alias string) error
	AccountID(alias string) (string, error)
	LeaseName(logical string) string
	POSTAs(alias, path string, body any) error
	GET(path string) error
	Field(name string) (any, error)
}

// RegisterSteps registers claim, renew, lookup, and deposit steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &leaseSteps{tc: tc}

	ctx.Step(`^an account "([^"]*)"$`, steps.anAccount)
	ctx.Step(`^"([^"]*)" claims "([^"]*)" for (\d+) years? paying (\d+)$`, steps.claims)
	ctx.Step(`^"([^"]*)" renews "([^"]*)" for (\d+) more years? paying (\d+)$`, steps.renews)
	ctx.Step(`^"([^"]*)" deposits (\d+)$`, steps.deposits)
	ctx.Step(`^anyone looks up the owner of "([^"]*)"$`, steps.looksUpOwner)
	ctx.Step(`^anyone fetches the lease "([^"]*)"$`, steps.fetchesLease)
	ctx.Step(`^the owner is account "([^"]*)"$`, steps.ownerIsAccount)
}

type leaseSteps struct {
	tc TestContext
}

func (s *leaseSteps) anAccount(alias string) error {
	return s.tc.EnsureAccount(alias)
}

func (s *leaseSteps) claims(alias, name string, years, amount int) error {
	path := "/domains/" + url.PathEscape(s.tc.LeaseName(name)) + "/claim"
	return s.tc.POSTAs(alias, path, map[string]any{
		"years":  years,
		"amount": amount,
	})
}

func (s *leaseSteps) renews(alias, name string, years, amount int) error {
	path := "/domains/" + url.PathEscape(s.tc.LeaseName(name)) + "/renew"
	return s.tc.POSTAs(alias, path, map[string]any{
		"additional_years": years,
		"amount":           amount,
	})
}

func (s *leaseSteps) deposits(alias string, amount int) error {
	return s.tc.POSTAs(alias, "/deposit", map[string]any{"amount": amount})
}

func (s *leaseSteps) looksUpOwner(name string) error {
	return s.tc.GET("/domains/" + url.PathEscape(s.tc.LeaseName(name)) + "/owner")
}

func (s *leaseSteps) fetchesLease(name string) error {
	return s.tc.GET("/domains/" + url.PathEscape(s.tc.LeaseName(name)))
}

func (s *leaseSteps) ownerIsAccount(alias string) error {
	expected, err := s.tc.AccountID(alias)
	if err != nil {
		return err
	}
	value, err := s.tc.Field("owner")
	if err != nil {
		return err
	}
	owner, ok := value.(string)
	if !ok {
		return fmt.Errorf("owner field is %T, not a string", value)
	}
	if owner != expected {
		return fmt.Errorf("expected owner %s (%s), got %s", expected, alias, owner)
	}
	return nil
}
