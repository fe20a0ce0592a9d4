package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greet struct{ Name string }

func (greet) Key() string { return "test.greet" }

type other struct{}

func (other) Key() string { return "test.other" }

func TestDispatchRoutesToTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler(bus, "test.greet", HandlerFunc[greet, string](func(_ context.Context, cmd greet) (string, error) {
		return "hello " + cmd.Name, nil
	}))

	out, err := Dispatch[greet, string](context.Background(), bus, greet{Name: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "hello ana", out)

	_, err = Dispatch[greet, int](context.Background(), bus, greet{})
	assert.ErrorIs(t, err, ErrResultType)
	assert.EqualError(t, err, "commands: result type mismatch: test.greet returned string")
	assert.Equal(t, []string{"test.greet"}, bus.Keys())
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := Dispatch[other, string](context.Background(), bus, other{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[other, string](context.Background(), nil, other{})
	assert.ErrorIs(t, err, ErrNilBus)

	boom := errors.New("boom")
	RegisterHandler(bus, "test.other", HandlerFunc[other, string](func(context.Context, other) (string, error) {
		return "", boom
	}))
	_, err = Dispatch[other, string](context.Background(), bus, other{})
	assert.ErrorIs(t, err, boom)
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[greet, string](func(context.Context, greet) (string, error) { return "", nil })
	RegisterHandler(bus, "test.greet", h)
	assert.Panics(t, func() { RegisterHandler(bus, "test.greet", h) })
	assert.Panics(t, func() { RegisterHandler(bus, "", h) })
}
