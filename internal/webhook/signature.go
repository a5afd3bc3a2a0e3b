// Package webhook — signature.go проверяет подпись result-вебхука Robokassa.
package webhook

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// ResultSignature считает ожидаемую подпись result-вебхука:
// UPPERCASE(HEX(MD5("OutSum:InvId:пароль2"))).
//
// OutSum подставляется РОВНО той строкой, которую прислал провайдер:
// переформатирование суммы ("10.00" → "10.0") ломает подпись.
func ResultSignature(outSum, invID, password2 string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", outSum, invID, password2)))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// VerifyResultSignature сравнивает подпись из запроса с ожидаемой.
// Сравнение без учёта регистра: провайдер шлёт hex в верхнем регистре,
// но полагаться на это не стоит.
func VerifyResultSignature(outSum, invID, password2, got string) bool {
	return strings.EqualFold(ResultSignature(outSum, invID, password2), got)
}
