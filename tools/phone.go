package tools

import (
	"fmt"
	"strings"
	"unicode"
)

// OnlyDigits remove tudo que não é dígito.
func OnlyDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalPhone normaliza um telefone para a forma canônica usada em
// matching e dedup: só dígitos, sem o DDI 55 quando o restante ainda tem
// 11+ dígitos (DDD + celular de 9 dígitos).
func CanonicalPhone(raw string) string {
	phone := OnlyDigits(raw)
	if strings.HasPrefix(phone, "55") && len(phone)-2 >= 11 {
		phone = phone[2:]
	}
	return phone
}

// FormatPhoneBR formata a forma canônica para exibição. Só apresentação;
// matching nunca usa esse formato.
func FormatPhoneBR(digits string) string {
	switch len(digits) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	}
	return digits
}

// NormalizeGatewayTo normaliza um telefone para o formato aceito pelos
// gateways de mensagens (apenas dígitos, em formato internacional, sem '+').
//
// Heurística atual (Brasil):
// - remove tudo que não é dígito
// - se vier com 10/11 dígitos, assume BR e prefixa 55
// - se já vier com DDI (>= 12 dígitos), mantém
func NormalizeGatewayTo(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty phone")
	}

	phone := OnlyDigits(raw)
	phone = strings.TrimLeft(phone, "0")

	// BR comum (DDD+numero): 10 ou 11 dígitos -> prefixa 55
	if len(phone) == 10 || len(phone) == 11 {
		phone = "55" + phone
	}

	// validação bem leve: DDI + número
	if len(phone) < 12 {
		return "", fmt.Errorf("invalid phone length: %d", len(phone))
	}
	return phone, nil
}
