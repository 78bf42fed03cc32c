package logx

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock implementation of the Engine interface for testing.
type MockEngine struct {
	mock.Mock
}

var _ Engine = (*MockEngine)(nil)

func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) Channel(name string) Channel {
	args := m.Called(name)

	ch, _ := args.Get(0).(Channel)
	return ch
}

// MockChannel is a mock implementation of the Channel interface for testing.
//
// LogFunc materializes the producer and records the call with the produced
// value, mirroring how a real engine consumes the deferred overload, so
// expectations for both Log and LogFunc assert on the final message value.
type MockChannel struct {
	mock.Mock
}

var _ Channel = (*MockChannel)(nil)

func NewMockChannel() *MockChannel {
	return &MockChannel{}
}

func (m *MockChannel) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockChannel) Enabled(level Level) bool {
	args := m.Called(level)
	return args.Bool(0)
}

func (m *MockChannel) Log(ctx context.Context, level Level, marker Marker, msg any, err error) {
	m.Called(ctx, level, marker, msg, err)
}

func (m *MockChannel) LogFunc(ctx context.Context, level Level, marker Marker, fn MessageFunc, err error) {
	var msg any
	if fn != nil {
		msg = fn()
	}

	m.Called(ctx, level, marker, msg, err)
}

func (m *MockChannel) Enter(ctx context.Context, flow *FlowEntry) {
	m.Called(ctx, flow)
}

func (m *MockChannel) Exit(ctx context.Context, flow *FlowEntry, result any, hasResult bool) {
	m.Called(ctx, flow, result, hasResult)
}

func (m *MockChannel) Catching(ctx context.Context, err error) {
	m.Called(ctx, err)
}
