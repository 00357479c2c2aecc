package jwt_test

import (
	"testing"

	"github.com/jhoicas/Cocina-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", jwt.RoleCocinero, "cocina-api", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, jwt.RoleCocinero, role)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestToken_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", jwt.RoleAdmin, "cocina-api", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", jwt.RoleAdmin, "", 5)
	assert.Error(t, err)
}
