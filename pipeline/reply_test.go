package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"imobot/extractor"
	"imobot/sessions"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 950", formatBRL(950))
	assert.Equal(t, "R$ 500.000", formatBRL(500000))
	assert.Equal(t, "R$ 1.500.000", formatBRL(1500000))
}

func TestWaitLabel(t *testing.T) {
	assert.Equal(t, "agora", waitLabel(0))
	assert.Equal(t, "em 30 min", waitLabel(30))
	assert.Equal(t, "em 1h", waitLabel(60))
	assert.Equal(t, "em 1h30min", waitLabel(90))
}

func TestDealTitle(t *testing.T) {
	full := sessions.Draft{
		Intent:       extractor.INTENT_BUY,
		PropertyType: extractor.PROPERTY_APARTMENT,
		Location:     "Pinheiros",
	}
	assert.Equal(t, "Compra de apartamento em Pinheiros", dealTitle(full))

	bare := sessions.Draft{Intent: extractor.INTENT_SELL}
	assert.Equal(t, "Venda de imóvel", dealTitle(bare))
}

func TestComposeReplyIsDeterministic(t *testing.T) {
	rc := replyContext{
		sig:       extractor.Signal{Name: "Ana", Budget: 500000},
		draft:     sessions.Draft{Name: "Ana Silva", Budget: 500000},
		connected: true,
		questions: []string{"Qual o melhor e-mail ou telefone para contato?"},
	}

	first := composeReply(rc)
	assert.Equal(t, first, composeReply(rc))

	lines := strings.Split(first, "\n")
	assert.Equal(t, "Olá, Ana!", lines[0])
	assert.Contains(t, lines[1], "Anotado: nome Ana, orçamento R$ 500.000.")
	assert.Equal(t, "Qual o melhor e-mail ou telefone para contato?", lines[len(lines)-1])
}

func TestComposeReplyGenericNextStep(t *testing.T) {
	reply := composeReply(replyContext{connected: true})
	assert.Contains(t, reply, "Olá!")
	assert.Contains(t, reply, "Em breve um corretor entra em contato")
}
