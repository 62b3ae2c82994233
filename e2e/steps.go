package e2e

import (
	"github.com/cucumber/godog"

	"namelease/e2e/steps/admin"
	"namelease/e2e/steps/common"
	"namelease/e2e/steps/lease"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic response assertions.
	common.RegisterSteps(ctx, tc)

	// Claim, renew, lookup, and deposit steps.
	lease.RegisterSteps(ctx, tc)

	// Admin surface steps.
	admin.RegisterSteps(ctx, tc)
}
