package pipeline

import (
	"fmt"
	"strings"

	"imobot/extractor"
	"imobot/sessions"
	"imobot/tools"
)

func intentLabel(intent string) string {
	switch intent {
	case extractor.INTENT_BUY:
		return "Compra"
	case extractor.INTENT_RENT:
		return "Locação"
	case extractor.INTENT_SELL:
		return "Venda"
	}
	return ""
}

// formatBRL formata inteiro em reais com ponto de milhar ("R$ 500.000").
func formatBRL(v int64) string {
	digits := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "R$ " + b.String()
}

func waitLabel(minutes int) string {
	if minutes <= 0 {
		return "agora"
	}
	if minutes < 60 {
		return fmt.Sprintf("em %d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("em %dh", minutes/60)
	}
	return fmt.Sprintf("em %dh%02dmin", minutes/60, minutes%60)
}

// dealTitle compõe o título da oportunidade; intent já vem garantido pela
// elegibilidade, o resto tem fallback sintetizado.
func dealTitle(d sessions.Draft) string {
	title := intentLabel(d.Intent)
	if d.PropertyType != "" {
		title += " de " + d.PropertyType
	} else {
		title += " de imóvel"
	}
	if d.Location != "" {
		title += " em " + d.Location
	}
	return title
}

// recordedFacts lista, em pt-BR, o que o sinal desta mensagem acrescentou.
func recordedFacts(sig extractor.Signal) []string {
	var out []string
	if sig.Name != "" {
		out = append(out, "nome "+sig.Name)
	}
	if sig.Email != "" {
		out = append(out, "e-mail "+sig.Email)
	}
	if sig.Phone != "" {
		out = append(out, "telefone "+tools.FormatPhoneBR(sig.Phone))
	}
	if sig.Company != "" {
		out = append(out, "empresa "+sig.Company)
	}
	if sig.Intent != "" {
		out = append(out, "interesse de "+strings.ToLower(intentLabel(sig.Intent)))
	}
	if sig.PropertyType != "" {
		out = append(out, "imóvel tipo "+sig.PropertyType)
	}
	if sig.Bedrooms != nil {
		out = append(out, fmt.Sprintf("%d quarto(s)", *sig.Bedrooms))
	}
	if sig.Location != "" {
		out = append(out, "região "+sig.Location)
	}
	if sig.Budget > 0 {
		out = append(out, "orçamento "+formatBRL(sig.Budget))
	}
	return out
}

type replyContext struct {
	sig              extractor.Signal
	draft            sessions.Draft
	leadCreated      bool
	taskCreated      bool
	dealCreated      bool
	dealTitle        string
	automationsFired int
	connected        bool
	questions        []string
}

// composeReply monta a resposta determinística do turno: resumo do que foi
// anotado, efeitos disparados, aviso de conexão e até duas perguntas
// pendentes (ou a linha genérica de próximo passo).
func composeReply(rc replyContext) string {
	var lines []string

	if rc.draft.Name != "" {
		lines = append(lines, fmt.Sprintf("Olá, %s!", firstName(rc.draft.Name)))
	} else {
		lines = append(lines, "Olá!")
	}

	if facts := recordedFacts(rc.sig); len(facts) > 0 {
		lines = append(lines, "Anotado: "+strings.Join(facts, ", ")+".")
	}

	if rc.leadCreated {
		lines = append(lines, "Seu cadastro foi criado no nosso sistema.")
	}
	if rc.taskCreated {
		lines = append(lines, "Agendei um follow-up com a nossa equipe.")
	}
	if rc.dealCreated {
		lines = append(lines, "Abri uma oportunidade: "+rc.dealTitle+".")
	}
	if rc.automationsFired > 0 {
		lines = append(lines, fmt.Sprintf("Você vai receber nossas próximas mensagens automáticas (%d programadas).", rc.automationsFired))
	}

	if !rc.connected {
		lines = append(lines, "Obs: este canal ainda não está conectado, então o retorno pode demorar um pouco mais.")
	}

	if len(rc.questions) > 0 {
		for _, q := range rc.questions {
			lines = append(lines, q)
		}
	} else {
		lines = append(lines, "Em breve um corretor entra em contato com os próximos passos.")
	}

	return strings.Join(lines, "\n")
}

func firstName(full string) string {
	if parts := strings.Fields(full); len(parts) > 0 {
		return parts[0]
	}
	return full
}
