package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"imobot/extractor"
	"imobot/sessions"
)

const (
	SOURCE_WEBHOOK = "webhook"
	SOURCE_MANUAL  = "manual"
)

const (
	ORIGIN_FOLLOWUP   = "followup"
	ORIGIN_AUTOMATION = "automation"
)

// Flags liga/desliga os efeitos colaterais externos. Desligado, o rascunho,
// o score e o estágio continuam evoluindo; só não escrevemos registro.
type Flags struct {
	CreateLeads bool
	CreateTasks bool
	CreateDeals bool
}

type Deps struct {
	Sessions     *sessions.Store
	Leads        LeadStore
	Tasks        TaskStore
	Deals        DealStore
	Automations  AutomationSource
	Conversation ConversationLog
	Channels     ChannelStatus
	Sender       ReplySender
	Flags        Flags
	Log          *zap.Logger
}

// Orchestrator processa cada mensagem de entrada: extrai fatos, acumula na
// sessão, pontua, avança o funil e dispara os efeitos idempotentes.
type Orchestrator struct {
	sessions     *sessions.Store
	leads        LeadStore
	tasks        TaskStore
	deals        DealStore
	automations  AutomationSource
	conversation ConversationLog
	channels     ChannelStatus
	sender       ReplySender
	flags        Flags
	log          *zap.Logger
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Orchestrator{
		sessions:     d.Sessions,
		leads:        d.Leads,
		tasks:        d.Tasks,
		deals:        d.Deals,
		automations:  d.Automations,
		conversation: d.Conversation,
		channels:     d.Channels,
		sender:       d.Sender,
		flags:        d.Flags,
		log:          d.Log,
	}
}

// Inbound é uma mensagem a processar. AutoReply só vale para Source webhook;
// mensagem manual/teste nunca dispara resposta automática.
type Inbound struct {
	Channel   string `json:"channel"`
	Peer      string `json:"peer"`
	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	Source    string `json:"source"`
	AutoReply bool   `json:"autoReply"`
}

// Outcome é o retrato do turno: resposta composta, estado da sessão e os
// eventos de auditoria do que disparou.
type Outcome struct {
	Reply       string              `json:"reply"`
	Score       int                 `json:"score"`
	Stage       string              `json:"stage"`
	LeadID      *int64              `json:"leadId,omitempty"`
	DealID      *int64              `json:"dealId,omitempty"`
	Questions   []string            `json:"questions,omitempty"`
	AuditEvents []ConversationEntry `json:"auditEvents,omitempty"`
}

// Process roda o turno inteiro segurando o lock da sessão: o read-modify-
// write do rascunho, das trancas e do histórico é uma unidade por chave.
func (o *Orchestrator) Process(ctx context.Context, in Inbound) (Outcome, error) {
	if in.Channel == "" || in.Peer == "" {
		return Outcome{}, fmt.Errorf("canal e peer são obrigatórios")
	}

	sess := o.sessions.Get(in.Channel, in.Peer)
	sess.Lock()
	defer sess.Unlock()

	// 1. extrai e acumula
	sig := extractor.Extract(in.Text)
	sess.Draft = Merge(sess.Draft, sig)
	sess.Score = Score(sess.Draft)
	sess.Stage = NextStage(sess.Stage, sess.Draft)
	sess.UpdatedAt = time.Now()

	var audits []ConversationEntry
	audit := func(kind, text string) {
		audits = append(audits, ConversationEntry{
			EntryID: uuid.NewString(),
			Role:    ENTRY_ROLE_AUDIT,
			Kind:    kind,
			Text:    text,
		})
	}

	// 2. perguntas pendentes; só as duas primeiras aparecem na resposta
	questions := PendingQuestions(sess.Draft)
	if len(questions) > 2 {
		questions = questions[:2]
	}

	// 3-4. identidade, lead e follow-up (follow-up só no turno de criação)
	leadCreated := false
	taskCreated := false
	if o.flags.CreateLeads {
		leadCreated = o.syncLead(ctx, sess, in, audit)
		if leadCreated && o.flags.CreateTasks {
			taskCreated = o.createFollowUp(ctx, sess, in, audit)
		}
	}

	// 5. oportunidade: tranca DealID garante no máximo uma por sessão
	dealCreated := false
	title := ""
	if o.flags.CreateDeals && sess.DealID == nil && sess.Draft.Intent != "" && sess.Draft.Budget > 0 {
		title = dealTitle(sess.Draft)
		dealCreated = o.createDeal(ctx, sess, in, title, audit)
	}

	// 6. automações: só no turno que criou o lead, uma vez por sessão
	automationsFired := 0
	if leadCreated && !sess.AutomationsTriggered {
		automationsFired = o.fireAutomations(ctx, sess, in, audit)
	}

	// 7. resposta determinística
	reply := composeReply(replyContext{
		sig:              sig,
		draft:            sess.Draft,
		leadCreated:      leadCreated,
		taskCreated:      taskCreated,
		dealCreated:      dealCreated,
		dealTitle:        title,
		automationsFired: automationsFired,
		connected:        o.channelConnected(ctx, in.Channel),
		questions:        questions,
	})

	// 8. histórico: mensagem do usuário, resposta e auditoria numa leva só
	entries := make([]ConversationEntry, 0, len(audits)+2)
	entries = append(entries,
		ConversationEntry{EntryID: uuid.NewString(), Role: ENTRY_ROLE_USER, Text: in.Text},
		ConversationEntry{EntryID: uuid.NewString(), Role: ENTRY_ROLE_AGENT, Text: reply},
	)
	entries = append(entries, audits...)
	if err := o.conversation.Append(ctx, in.Channel, in.Peer, entries); err != nil {
		o.log.Error("falha ao gravar histórico da conversa",
			zap.Error(err),
			zap.String("channel", in.Channel),
			zap.String("peer", in.Peer))
	}

	// 9. resposta automática só para mensagem vinda do webhook
	if in.AutoReply && in.Source == SOURCE_WEBHOOK && o.sender != nil {
		if err := o.sender.SendText(ctx, in.Channel, in.Peer, reply); err != nil {
			o.log.Warn("falha ao enviar resposta automática",
				zap.Error(err),
				zap.String("channel", in.Channel),
				zap.String("peer", in.Peer))
		}
	}

	out := Outcome{
		Reply:       reply,
		Score:       sess.Score,
		Stage:       sess.Stage,
		Questions:   questions,
		AuditEvents: audits,
	}
	if sess.LeadID != nil {
		v := *sess.LeadID
		out.LeadID = &v
	}
	if sess.DealID != nil {
		v := *sess.DealID
		out.DealID = &v
	}
	return out, nil
}

// syncLead resolve a identidade e cria/atualiza o lead. Devolve true apenas
// quando o lead nasceu neste turno (a tranca LeadID passa a existir e as
// próximas mensagens caem no ramo de atualização).
func (o *Orchestrator) syncLead(ctx context.Context, sess *sessions.Session, in Inbound, audit func(kind, text string)) bool {
	fields := o.leadFields(sess, in)

	if sess.LeadID != nil {
		if _, err := o.leads.Upsert(ctx, sess.LeadID, fields); err != nil {
			audit(AUDIT_STORE_ERROR, "falha ao atualizar lead: "+err.Error())
		}
		return false
	}

	ref, lookupFailed := o.findExisting(ctx, sess, audit)
	if ref != nil {
		id := ref.ID
		sess.LeadID = &id
		if _, err := o.leads.Upsert(ctx, &id, fields); err != nil {
			audit(AUDIT_STORE_ERROR, "falha ao atualizar lead: "+err.Error())
		}
		return false
	}
	if lookupFailed {
		// sem certeza de que não existe, não cria; tenta no próximo turno
		return false
	}

	id, err := o.leads.Upsert(ctx, nil, fields)
	if err != nil {
		audit(AUDIT_STORE_ERROR, "falha ao criar lead: "+err.Error())
		return false
	}
	sess.LeadID = &id
	audit(AUDIT_LEAD_CREATED, fmt.Sprintf("Lead #%d criado (%s)", id, o.displayName(sess, in)))
	return true
}

// findExisting aplica o dedup na ordem fixa: e-mail exato primeiro, depois
// telefone só-dígitos. Nada de matching fuzzy.
func (o *Orchestrator) findExisting(ctx context.Context, sess *sessions.Session, audit func(kind, text string)) (*LeadRef, bool) {
	failed := false
	if email := sess.Draft.Email; email != "" {
		ref, err := o.leads.FindByEmail(ctx, email)
		if err != nil {
			failed = true
			audit(AUDIT_STORE_ERROR, "busca de lead por e-mail falhou: "+err.Error())
		} else if ref != nil {
			return ref, false
		}
	}
	if phone := sess.Draft.Phone; phone != "" {
		ref, err := o.leads.FindByPhone(ctx, phone)
		if err != nil {
			failed = true
			audit(AUDIT_STORE_ERROR, "busca de lead por telefone falhou: "+err.Error())
		} else if ref != nil {
			return ref, false
		}
	}
	return nil, failed
}

func (o *Orchestrator) createFollowUp(ctx context.Context, sess *sessions.Session, in Inbound, audit func(kind, text string)) bool {
	fields := TaskFields{
		LeadID:      *sess.LeadID,
		Title:       "Fazer primeiro contato com " + o.displayName(sess, in),
		Description: "Lead novo chegou pelo canal " + in.Channel + ". Retomar a conversa.",
		DueLabel:    "hoje",
		Channel:     in.Channel,
		Origin:      ORIGIN_FOLLOWUP,
	}
	id, err := o.tasks.Create(ctx, fields)
	if err != nil {
		audit(AUDIT_STORE_ERROR, "falha ao criar tarefa de follow-up: "+err.Error())
		return false
	}
	audit(AUDIT_TASK_CREATED, fmt.Sprintf("Tarefa #%d: %s", id, fields.Title))
	return true
}

func (o *Orchestrator) createDeal(ctx context.Context, sess *sessions.Session, in Inbound, title string, audit func(kind, text string)) bool {
	var leadID int64
	if sess.LeadID != nil {
		leadID = *sess.LeadID
	}
	id, err := o.deals.Create(ctx, DealFields{
		LeadID:  leadID,
		Title:   title,
		Value:   sess.Draft.Budget,
		Channel: in.Channel,
	})
	if err != nil {
		audit(AUDIT_STORE_ERROR, "falha ao criar oportunidade: "+err.Error())
		return false
	}
	sess.DealID = &id
	audit(AUDIT_DEAL_CREATED, fmt.Sprintf("Oportunidade #%d: %s (%s)", id, title, formatBRL(sess.Draft.Budget)))
	return true
}

// fireAutomations transforma cada passo de cada campanha ativa em uma
// tarefa. A tranca AutomationsTriggered fecha depois da primeira rodada e
// nunca reabre, mesmo que um segundo evento de lead novo reuse a sessão.
func (o *Orchestrator) fireAutomations(ctx context.Context, sess *sessions.Session, in Inbound, audit func(kind, text string)) int {
	defs, err := o.automations.ListActive(ctx, TRIGGER_NEW_LEAD)
	if err != nil {
		audit(AUDIT_STORE_ERROR, "falha ao listar automações: "+err.Error())
		return 0
	}
	if len(defs) == 0 {
		return 0
	}

	fired := 0
	leadID := *sess.LeadID
	for _, def := range defs {
		count := 0
		for i, step := range def.Steps {
			title := step.Title
			if title == "" {
				title = fmt.Sprintf("%s: passo %d", def.Name, i+1)
			}
			channel := step.Channel
			if channel == "" {
				channel = in.Channel
			}
			_, err := o.tasks.Create(ctx, TaskFields{
				LeadID:      leadID,
				Title:       title,
				Description: fmt.Sprintf("Passo automático da campanha %q.", def.Name),
				DueLabel:    waitLabel(step.WaitMinutes),
				Channel:     channel,
				Origin:      ORIGIN_AUTOMATION,
			})
			if err != nil {
				audit(AUDIT_STORE_ERROR, "falha ao criar tarefa da automação: "+err.Error())
				continue
			}
			count++
			fired++
		}
		audit(AUDIT_AUTOMATION_FIRED, fmt.Sprintf("Automação %q disparou %d tarefa(s)", def.Name, count))
	}
	sess.AutomationsTriggered = true
	return fired
}

func (o *Orchestrator) channelConnected(ctx context.Context, channel string) bool {
	if o.channels == nil {
		return true
	}
	ok, err := o.channels.Connected(ctx, channel)
	if err != nil {
		o.log.Warn("não deu pra checar o estado do canal",
			zap.Error(err),
			zap.String("channel", channel))
		return true
	}
	return ok
}

func (o *Orchestrator) leadFields(sess *sessions.Session, in Inbound) LeadFields {
	d := sess.Draft
	name := d.Name
	if name == "" {
		name = in.Author
	}
	return LeadFields{
		Name:         name,
		Email:        d.Email,
		Phone:        d.Phone,
		Company:      d.Company,
		Intent:       d.Intent,
		PropertyType: d.PropertyType,
		Bedrooms:     d.Bedrooms,
		Location:     d.Location,
		Budget:       d.Budget,
		Score:        sess.Score,
		Stage:        sess.Stage,
		Channel:      in.Channel,
		Peer:         in.Peer,
	}
}

func (o *Orchestrator) displayName(sess *sessions.Session, in Inbound) string {
	if sess.Draft.Name != "" {
		return sess.Draft.Name
	}
	if in.Author != "" {
		return in.Author
	}
	return in.Peer
}
