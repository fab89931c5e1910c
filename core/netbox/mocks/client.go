package mocks

import (
	"context"

	"netbox-reconciler/core/netbox"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of netbox.Client
type Client struct {
	mock.Mock
}

func (m *Client) List(ctx context.Context, endpoint string, filter map[string]string) ([]netbox.Object, error) {
	args := m.Called(ctx, endpoint, filter)
	if objs, ok := args.Get(0).([]netbox.Object); ok {
		return objs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Create(ctx context.Context, endpoint string, attrs map[string]any) (netbox.Object, error) {
	args := m.Called(ctx, endpoint, attrs)
	if obj, ok := args.Get(0).(netbox.Object); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Update(ctx context.Context, endpoint string, id int, delta map[string]any) (netbox.Object, error) {
	args := m.Called(ctx, endpoint, id, delta)
	if obj, ok := args.Get(0).(netbox.Object); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Delete(ctx context.Context, endpoint string, id int) error {
	args := m.Called(ctx, endpoint, id)
	return args.Error(0)
}
