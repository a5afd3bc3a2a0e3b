package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultSignature(t *testing.T) {
	// md5("100.00:000000042:pass2"), hex в верхнем регистре
	sig := ResultSignature("100.00", "000000042", "pass2")
	assert.Equal(t, "994F36017714207324549C637FECFA2E", sig)
}

func TestVerifyResultSignature(t *testing.T) {
	sig := ResultSignature("100.00", "000000042", "pass2")

	assert.True(t, VerifyResultSignature("100.00", "000000042", "pass2", sig))
	// регистр не важен
	assert.True(t, VerifyResultSignature("100.00", "000000042", "pass2", "994f36017714207324549c637fecfa2e"))
	// другая сумма — другая подпись
	assert.False(t, VerifyResultSignature("100.0", "000000042", "pass2", sig))
	// другой пароль
	assert.False(t, VerifyResultSignature("100.00", "000000042", "wrong", sig))
	// мусор вместо подписи
	assert.False(t, VerifyResultSignature("100.00", "000000042", "pass2", "not-a-signature"))
}
