package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/boulangerie-api/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "u-1", "Camille", pkgjwt.RolePanadero, "boulangerie-test", 5)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Camille", claims.Name)
	assert.Equal(t, pkgjwt.RolePanadero, claims.Role)
	assert.Equal(t, "boulangerie-test", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "u-1", "Camille", pkgjwt.RoleAdmin, "x", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secreto", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "u-1", "Camille", pkgjwt.RoleAdmin, "x", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secreto", tok)
	assert.Error(t, err, "un token expirado no debe aceptarse")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u", "n", "admin", "x", 5)
	assert.Error(t, err)
}
