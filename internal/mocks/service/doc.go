// Package service holds testify mocks of the domain service interfaces.
package service

import "github.com/stretchr/testify/mock"

// testingT is what the constructors need to register expectation checks.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}
