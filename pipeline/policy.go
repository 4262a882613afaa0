package pipeline

import (
	"imobot/extractor"
	"imobot/sessions"
)

/**** MARK: Estágios do funil ****/

const (
	STAGE_NEW         = "new"
	STAGE_CONTACTED   = "contacted"
	STAGE_QUALIFIED   = "qualified"
	STAGE_PROPOSAL    = "proposal"
	STAGE_NEGOTIATION = "negotiation"
	STAGE_WON         = "won"
)

// ordem total do funil; estágio desconhecido conta como o mais baixo
var stageRank = map[string]int{
	STAGE_NEW:         0,
	STAGE_CONTACTED:   1,
	STAGE_QUALIFIED:   2,
	STAGE_PROPOSAL:    3,
	STAGE_NEGOTIATION: 4,
	STAGE_WON:         5,
}

/**** MARK: Pesos de score ****/

const (
	SCORE_BASE          = 25
	SCORE_NAME          = 10
	SCORE_EMAIL         = 15
	SCORE_PHONE         = 15
	SCORE_INTENT        = 5
	SCORE_PROPERTY_TYPE = 10
	SCORE_LOCATION      = 10
	SCORE_BEDROOMS      = 5
	SCORE_BUDGET        = 15
	SCORE_MAX           = 100
)

// Merge aplica um sinal novo sobre o rascunho acumulado: campo não-vazio
// sobrescreve, campo ausente nunca apaga o que já foi coletado.
func Merge(d sessions.Draft, sig extractor.Signal) sessions.Draft {
	if sig.Name != "" {
		d.Name = sig.Name
	}
	if sig.Email != "" {
		d.Email = sig.Email
	}
	if sig.Phone != "" {
		d.Phone = sig.Phone
	}
	if sig.Company != "" {
		d.Company = sig.Company
	}
	if sig.Intent != "" {
		d.Intent = sig.Intent
	}
	if sig.PropertyType != "" {
		d.PropertyType = sig.PropertyType
	}
	if sig.Bedrooms != nil {
		n := *sig.Bedrooms
		d.Bedrooms = &n
	}
	if sig.Location != "" {
		d.Location = sig.Location
	}
	if sig.Budget > 0 {
		d.Budget = sig.Budget
	}
	return d
}

// Score pontua o rascunho: base fixa mais peso por fato presente, teto 100.
func Score(d sessions.Draft) int {
	score := SCORE_BASE
	if d.Name != "" {
		score += SCORE_NAME
	}
	if d.Email != "" {
		score += SCORE_EMAIL
	}
	if d.Phone != "" {
		score += SCORE_PHONE
	}
	if d.Intent != "" {
		score += SCORE_INTENT
	}
	if d.PropertyType != "" {
		score += SCORE_PROPERTY_TYPE
	}
	if d.Location != "" {
		score += SCORE_LOCATION
	}
	if d.Bedrooms != nil {
		score += SCORE_BEDROOMS
	}
	if d.Budget > 0 {
		score += SCORE_BUDGET
	}
	if score > SCORE_MAX {
		score = SCORE_MAX
	}
	return score
}

// NextStage nunca regride: devolve o maior entre o estágio atual e o
// desejado pelo rascunho. Atual vazio assume o desejado direto.
func NextStage(current string, d sessions.Draft) string {
	desired := STAGE_CONTACTED
	if d.Intent != "" && d.Budget > 0 && (d.Location != "" || d.PropertyType != "") {
		desired = STAGE_QUALIFIED
	}
	if current == "" {
		return desired
	}
	if stageRank[current] >= stageRank[desired] {
		return current
	}
	return desired
}

// PendingQuestions devolve as perguntas dos fatos que ainda faltam, na ordem
// fixa de prioridade. O orquestrador só apresenta as duas primeiras por turno.
func PendingQuestions(d sessions.Draft) []string {
	var out []string
	if d.Name == "" {
		out = append(out, "Qual é o seu nome?")
	}
	if d.Email == "" && d.Phone == "" {
		out = append(out, "Qual o melhor e-mail ou telefone para contato?")
	}
	if d.Intent == "" {
		out = append(out, "Você quer comprar, alugar ou vender?")
	}
	if d.PropertyType == "" {
		out = append(out, "Que tipo de imóvel você procura?")
	}
	if d.Location == "" {
		out = append(out, "Em qual bairro ou região?")
	}
	if d.Budget == 0 {
		out = append(out, "Qual o seu orçamento aproximado?")
	}
	return out
}
