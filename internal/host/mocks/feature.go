package mocks

import (
	"context"

	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/stretchr/testify/mock"
)

// MockFeatureLoader is a mock implementation of the host.FeatureLoader interface
type MockFeatureLoader struct {
	mock.Mock
	name string
}

// NewMockFeatureLoader creates a new MockFeatureLoader with the given name
func NewMockFeatureLoader(name string) *MockFeatureLoader {
	return &MockFeatureLoader{name: name}
}

// AllowAll stubs every contribution method to succeed.
func (m *MockFeatureLoader) AllowAll() *MockFeatureLoader {
	for _, method := range []string{
		"ContributeConfigSections",
		"ContributeConfiguration",
		"ContributeComponents",
		"ContributeAdapterComponents",
		"ContributeCompiledComponents",
	} {
		m.On(method, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	}
	m.On("CompileComponents", mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *MockFeatureLoader) Name() string {
	return m.name
}

func (m *MockFeatureLoader) ContributeConfigSections(
	ctx context.Context,
	c *container.Container,
	b *container.Builder,
) error {
	args := m.Called(ctx, c, b)
	return args.Error(0)
}

func (m *MockFeatureLoader) ContributeConfiguration(
	ctx context.Context,
	c *container.Container,
	b *container.Builder,
) error {
	args := m.Called(ctx, c, b)
	return args.Error(0)
}

func (m *MockFeatureLoader) ContributeComponents(
	ctx context.Context,
	c *container.Container,
	b *container.Builder,
) error {
	args := m.Called(ctx, c, b)
	return args.Error(0)
}

func (m *MockFeatureLoader) ContributeAdapterComponents(
	ctx context.Context,
	c *container.Container,
	b *container.Builder,
) error {
	args := m.Called(ctx, c, b)
	return args.Error(0)
}

func (m *MockFeatureLoader) CompileComponents(ctx context.Context, c *container.Container) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockFeatureLoader) ContributeCompiledComponents(
	ctx context.Context,
	c *container.Container,
	b *container.Builder,
) error {
	args := m.Called(ctx, c, b)
	return args.Error(0)
}
