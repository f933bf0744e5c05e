package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "cafe-creme-200-g", GenerateSlug("  Café Crème, 200 g!"))
	assert.Equal(t, "leather-jacket", GenerateSlug("Leather--Jacket"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.com", NormalizeEmail("  Ann@X.com "))
}

func TestHashPassword_VerifiesOnlyOriginal(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, CheckPassword(hash, "secret1"))
	assert.Error(t, CheckPassword(hash, "secret2"))
	assert.Error(t, CheckPassword(hash, ""))
}

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "dup"}}}

	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(errors.New("E11000 duplicate key error collection: users")))
	assert.False(t, IsDuplicateKey(errors.New("timeout")))
	assert.False(t, IsDuplicateKey(nil))
}

