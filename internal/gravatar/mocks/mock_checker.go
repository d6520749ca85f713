package mocks

import (
	"context"

	"testlab/internal/gravatar"

	"github.com/stretchr/testify/mock"
)

// MockChecker is a testify mock for gravatar.Checker.
type MockChecker struct {
	mock.Mock
}

var _ gravatar.Checker = (*MockChecker)(nil)

func (m *MockChecker) Has(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
