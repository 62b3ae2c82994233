package common

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context.
type TestContext interface {
	Status() int
	Field(name string) (any, error)
	ErrorCode() (string, error)
}

// RegisterSteps registers generic response assertions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the response status is (\d+)$`, steps.responseStatusIs)
	ctx.Step(`^the error code is "([^"]*)"$`, steps.errorCodeIs)
	ctx.Step(`^the response field "([^"]*)" is (-?\d+)$`, steps.responseFieldIsNumber)
	ctx.Step(`^the response field "([^"]*)" is at least (\d+)$`, steps.responseFieldIsAtLeast)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) responseStatusIs(expected int) error {
	if s.tc.Status() != expected {
		return fmt.Errorf("expected status %d, got %d", expected, s.tc.Status())
	}
	return nil
}

func (s *commonSteps) errorCodeIs(expected string) error {
	code, err := s.tc.ErrorCode()
	if err != nil {
		return err
	}
	if code != expected {
		return fmt.Errorf("expected error code %q, got %q", expected, code)
	}
	return nil
}

// numericField reads a field decoded by encoding/json, which renders
// every JSON number as float64.
func (s *commonSteps) numericField(name string) (float64, error) {
	value, err := s.tc.Field(name)
	if err != nil {
		return 0, err
	}
	number, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, not a number", name, value)
	}
	return number, nil
}

func (s *commonSteps) responseFieldIsNumber(name string, expected int) error {
	number, err := s.numericField(name)
	if err != nil {
		return err
	}
	if number != float64(expected) {
		return fmt.Errorf("expected field %q to be %d, got %v", name, expected, number)
	}
	return nil
}

func (s *commonSteps) responseFieldIsAtLeast(name string, minimum int) error {
	number, err := s.numericField(name)
	if err != nil {
		return err
	}
	if number < float64(minimum) {
		return fmt.Errorf("expected field %q to be at least %d, got %v", name, minimum, number)
	}
	return nil
}
