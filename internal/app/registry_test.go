package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CancelTearsDownConnection(t *testing.T) {
	r := NewRegistry()
	fc := &fakeConn{}
	canceled := false
	r.Bind("c1", fc, func() { canceled = true })

	require.True(t, r.Cancel("c1"))
	assert.True(t, canceled, "write pump cancel func invoked")
	assert.True(t, fc.closed, "transport closed so a blocked read returns")

	assert.False(t, r.Cancel("ghost"))
}

func TestRegistry_CancelWithoutCancelFunc(t *testing.T) {
	r := NewRegistry()
	fc := &fakeConn{}
	r.Bind("c1", fc, nil)

	require.True(t, r.Cancel("c1"))
	assert.True(t, fc.closed)
}
