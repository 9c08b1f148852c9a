package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYParse(t *testing.T) {
	token, err := Generate("secreto", "u1", "c1", RoleBodeguero, "inventario-farmacia", 5)
	require.NoError(t, err)

	userID, companyID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, RoleBodeguero, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", "u1", "c1", RoleAdmin, "inventario-farmacia", 5)
	require.NoError(t, err)

	_, _, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := Generate("secreto", "u1", "c1", RoleAdmin, "inventario-farmacia", -1)
	require.NoError(t, err)

	_, _, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleVendedor))
	assert.False(t, ValidRole("cajero"))
	assert.False(t, ValidRole(""))
}

func TestGenerate_SinSecreto(t *testing.T) {
	_, err := Generate("", "u1", "c1", RoleAdmin, "inventario-farmacia", 5)
	assert.Error(t, err)
}
