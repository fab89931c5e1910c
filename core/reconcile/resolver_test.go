package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/netbox/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_Resolve(t *testing.T) {
	r := testRegistry(t)
	target, _ := r.Get("manufacturer")

	t.Run("SingleMatch", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("List", mock.Anything, manufacturers, byName("Cisco")).
			Return([]netbox.Object{{"id": 3, "name": "Cisco"}}, nil)

		id, err := NewResolver(client, zap.NewNop()).Resolve(context.Background(), "manufacturer", "Cisco", target)
		require.NoError(t, err)
		assert.Equal(t, 3, id)
	})

	t.Run("ExactMatchOnly", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("List", mock.Anything, manufacturers, byName("Cisco")).
			Return([]netbox.Object{{"id": 3, "name": "Cisco Systems"}, {"id": 4, "name": "Cisco"}}, nil)

		id, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", "Cisco", target)
		require.NoError(t, err)
		assert.Equal(t, 4, id)
	})

	t.Run("NotFound", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("List", mock.Anything, manufacturers, byName("Nope")).Return([]netbox.Object{}, nil)

		_, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", "Nope", target)
		var nf *ReferenceNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "manufacturer", nf.Field)
		assert.Equal(t, "Nope", nf.Value)
	})

	t.Run("Ambiguous", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("List", mock.Anything, manufacturers, byName("Cisco")).
			Return([]netbox.Object{{"id": 1, "name": "Cisco"}, {"id": 2, "name": "Cisco"}}, nil)

		_, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", "Cisco", target)
		var amb *AmbiguousReferenceError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 2, amb.Count)
	})

	t.Run("IntegerIsID", func(t *testing.T) {
		client := new(mocks.Client)
		id, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", float64(8), target)
		require.NoError(t, err)
		assert.Equal(t, 8, id)
		assert.Empty(t, client.Calls)
	})

	t.Run("EmptyValue", func(t *testing.T) {
		client := new(mocks.Client)
		_, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", "", target)
		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("TransportErrorPropagates", func(t *testing.T) {
		client := new(mocks.Client)
		apiErr := &netbox.APIError{Method: "GET", StatusCode: 503}
		client.On("List", mock.Anything, manufacturers, byName("Cisco")).Return(nil, apiErr)

		_, err := NewResolver(client, nil).Resolve(context.Background(), "manufacturer", "Cisco", target)
		assert.True(t, errors.Is(err, apiErr))
	})
}

func TestResolver_CollapsesConcurrentLookups(t *testing.T) {
	r := testRegistry(t)
	target, _ := r.Get("manufacturer")

	release := make(chan time.Time)
	client := new(mocks.Client)
	client.On("List", mock.Anything, manufacturers, byName("Cisco")).
		WaitUntil(release).
		Return([]netbox.Object{{"id": 3, "name": "Cisco"}}, nil)

	resolver := NewResolver(client, nil)

	const callers = 5
	var wg sync.WaitGroup
	ids := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := resolver.Resolve(context.Background(), "manufacturer", "Cisco", target)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}

	// let every caller join the in-flight lookup before it returns
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, 3, id)
	}
	client.AssertNumberOfCalls(t, "List", 1)
}

func TestResolver_CancelledCallerDoesNotFailOthers(t *testing.T) {
	r := testRegistry(t)
	target, _ := r.Get("manufacturer")

	release := make(chan time.Time)
	client := new(mocks.Client)
	client.On("List", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), manufacturers, byName("Cisco")).
		WaitUntil(release).
		Return([]netbox.Object{{"id": 3, "name": "Cisco"}}, nil)

	resolver := NewResolver(client, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(cancelled, "manufacturer", "Cisco", target)
		errA <- err
	}()

	// B joins the flight A started
	time.Sleep(20 * time.Millisecond)
	var idB int
	var errB error
	done := make(chan struct{})
	go func() {
		defer close(done)
		idB, errB = resolver.Resolve(context.Background(), "manufacturer", "Cisco", target)
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	err := <-errA
	var connErr *netbox.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	<-done
	require.NoError(t, errB)
	assert.Equal(t, 3, idB)
	client.AssertNumberOfCalls(t, "List", 1)
}
