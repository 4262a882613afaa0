package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"imobot/extractor"
	"imobot/sessions"
)

func TestMergeEmptySignalIsNoop(t *testing.T) {
	three := 3
	d := sessions.Draft{
		Name:         "Ana",
		Email:        "ana@example.com",
		Phone:        "11999887766",
		Intent:       extractor.INTENT_BUY,
		PropertyType: extractor.PROPERTY_APARTMENT,
		Bedrooms:     &three,
		Location:     "Pinheiros",
		Budget:       500000,
	}

	assert.Equal(t, d, Merge(d, extractor.Signal{}))
}

func TestMergeLastNonEmptyWins(t *testing.T) {
	d := sessions.Draft{Name: "Ana", Location: "Pinheiros"}

	d = Merge(d, extractor.Signal{Name: "Ana Silva", Budget: 300000})
	assert.Equal(t, "Ana Silva", d.Name)
	assert.Equal(t, "Pinheiros", d.Location)
	assert.Equal(t, int64(300000), d.Budget)

	// sinal sem os campos não apaga o que já foi coletado
	d = Merge(d, extractor.Signal{Intent: extractor.INTENT_BUY})
	assert.Equal(t, "Ana Silva", d.Name)
	assert.Equal(t, int64(300000), d.Budget)
}

func TestMergeCopiesBedrooms(t *testing.T) {
	two := 2
	d := Merge(sessions.Draft{}, extractor.Signal{Bedrooms: &two})

	two = 5
	if assert.NotNil(t, d.Bedrooms) {
		assert.Equal(t, 2, *d.Bedrooms)
	}
}

func TestScoreBaseAndCap(t *testing.T) {
	assert.Equal(t, SCORE_BASE, Score(sessions.Draft{}))

	three := 3
	full := sessions.Draft{
		Name:         "Ana",
		Email:        "ana@example.com",
		Phone:        "11999887766",
		Intent:       extractor.INTENT_BUY,
		PropertyType: extractor.PROPERTY_APARTMENT,
		Bedrooms:     &three,
		Location:     "Pinheiros",
		Budget:       500000,
	}
	assert.Equal(t, SCORE_MAX, Score(full))
}

func TestScoreMonotone(t *testing.T) {
	steps := []extractor.Signal{
		{Name: "Ana"},
		{Email: "ana@example.com"},
		{Phone: "11999887766"},
		{Intent: extractor.INTENT_BUY},
		{PropertyType: extractor.PROPERTY_APARTMENT},
		{Location: "Pinheiros"},
		{Budget: 500000},
	}

	var d sessions.Draft
	last := Score(d)
	for _, sig := range steps {
		d = Merge(d, sig)
		got := Score(d)
		assert.GreaterOrEqual(t, got, last)
		last = got
	}
}

func TestNextStageDesired(t *testing.T) {
	assert.Equal(t, STAGE_CONTACTED, NextStage("", sessions.Draft{}))

	qualified := sessions.Draft{
		Intent:   extractor.INTENT_BUY,
		Budget:   500000,
		Location: "Pinheiros",
	}
	assert.Equal(t, STAGE_QUALIFIED, NextStage("", qualified))

	// tipo de imóvel também satisfaz o critério de localização
	byType := sessions.Draft{
		Intent:       extractor.INTENT_RENT,
		Budget:       2000,
		PropertyType: extractor.PROPERTY_HOUSE,
	}
	assert.Equal(t, STAGE_QUALIFIED, NextStage(STAGE_NEW, byType))

	// sem orçamento não qualifica
	assert.Equal(t, STAGE_CONTACTED, NextStage("", sessions.Draft{Intent: extractor.INTENT_BUY, Location: "Centro"}))
}

func TestNextStageNeverRegresses(t *testing.T) {
	for _, stage := range []string{STAGE_QUALIFIED, STAGE_PROPOSAL, STAGE_NEGOTIATION, STAGE_WON} {
		assert.Equal(t, stage, NextStage(stage, sessions.Draft{}), "estágio %s não pode regredir", stage)
	}
}

func TestPendingQuestionsOrder(t *testing.T) {
	qs := PendingQuestions(sessions.Draft{})
	assert.Len(t, qs, 6)
	assert.Equal(t, "Qual é o seu nome?", qs[0])
	assert.Equal(t, "Qual o melhor e-mail ou telefone para contato?", qs[1])

	// telefone sozinho já resolve a pergunta de contato
	qs = PendingQuestions(sessions.Draft{Phone: "11999887766"})
	assert.Len(t, qs, 5)
	assert.Equal(t, "Qual é o seu nome?", qs[0])
	assert.Equal(t, "Você quer comprar, alugar ou vender?", qs[1])

	three := 3
	full := sessions.Draft{
		Name:         "Ana",
		Phone:        "11999887766",
		Intent:       extractor.INTENT_BUY,
		PropertyType: extractor.PROPERTY_APARTMENT,
		Bedrooms:     &three,
		Location:     "Pinheiros",
		Budget:       500000,
	}
	assert.Empty(t, PendingQuestions(full))
}
