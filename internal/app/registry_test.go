package app

import (
	"testing"

	"github.com/dkeye/Support/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()
	c, _ := newConn("c1", "u1", domain.RoleCustomer)

	assert.Nil(t, reg.Register(c))
	got, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, reg.Count())

	_, ok = reg.Lookup("nobody")
	assert.False(t, ok)
}

func TestRegistrySupersede(t *testing.T) {
	reg := NewRegistry()
	old, _ := newConn("c1", "u1", domain.RoleCustomer)
	fresh, _ := newConn("c2", "u1", domain.RoleCustomer)

	reg.Register(old)
	prev := reg.Register(fresh)
	assert.Same(t, old, prev)
	assert.Equal(t, 1, reg.Count())

	// the stale connection closing late must not evict its successor
	assert.False(t, reg.Release("u1", "c1"))
	got, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	assert.True(t, reg.Release("u1", "c2"))
	assert.False(t, fresh.Online())
	assert.Zero(t, reg.Count())
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	c, _ := newConn("c1", "u1", domain.RoleCustomer)
	reg.Register(c)

	reg.Unregister("u1")
	reg.Unregister("u1")
	assert.False(t, c.Online())
	assert.Zero(t, reg.Count())
}

func TestRegistryQueries(t *testing.T) {
	reg := NewRegistry()
	cust, _ := newConn("c1", "u1", domain.RoleCustomer)
	admin, _ := newConn("c2", "a1", domain.RoleAdmin)
	super, _ := newConn("c3", "s1", domain.RoleSuperAdmin)
	reg.Register(cust)
	reg.Register(admin)
	reg.Register(super)

	staff := reg.ListByRole(domain.RoleAdmin, domain.RoleSuperAdmin)
	assert.Len(t, staff, 2)
	assert.Len(t, reg.ListByRole(domain.RoleGuest), 0)

	c, ok := reg.FindByEmail("u1@shop.test")
	require.True(t, ok)
	assert.Same(t, cust, c)
	_, ok = reg.FindByEmail("")
	assert.False(t, ok)

	infos := reg.List()
	assert.Len(t, infos, 3)
	for _, info := range infos {
		assert.True(t, info.Online)
	}
}
