package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.io"))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("sunsh4re!"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("nodigits!!"))
	assert.False(t, IsValidPassword("n0special"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.True(t, IsValidPhone("+91 98765-43210"))
	assert.True(t, IsValidPhone("09876543210"))
	assert.False(t, IsValidPhone("1234567890"))
	assert.False(t, IsValidPhone("98765"))
}

func TestIsValidFullname(t *testing.T) {
	assert.True(t, IsValidFullname("Asha D'Souza-Rao"))
	assert.False(t, IsValidFullname(""))
	assert.False(t, IsValidFullname("R2D2"))
}
