package pipeline

import "context"

/************************************************
/**** MARK: Contratos com os stores externos ****/
/************************************************/

// O orquestrador nunca enxerga os schemas dos registros externos; tudo passa
// por estes contratos estreitos e toda chamada é best-effort: falha vira
// evento de auditoria e a conversa segue.

const TRIGGER_NEW_LEAD = "new_lead"

const (
	ENTRY_ROLE_USER  = "user"
	ENTRY_ROLE_AGENT = "agent"
	ENTRY_ROLE_AUDIT = "audit"
)

const (
	AUDIT_LEAD_CREATED     = "lead_created"
	AUDIT_TASK_CREATED     = "task_created"
	AUDIT_DEAL_CREATED     = "deal_created"
	AUDIT_AUTOMATION_FIRED = "automation_fired"
	AUDIT_STORE_ERROR      = "store_error"
)

type LeadFields struct {
	Name         string
	Email        string
	Phone        string
	Company      string
	Intent       string
	PropertyType string
	Bedrooms     *int
	Location     string
	Budget       int64
	Score        int
	Stage        string
	Channel      string
	Peer         string
}

// LeadRef é o resultado de uma busca de dedup.
type LeadRef struct {
	ID   int64
	Name string
}

type LeadStore interface {
	// Upsert cria quando id é nil e atualiza quando não é; devolve o id final.
	Upsert(ctx context.Context, id *int64, fields LeadFields) (int64, error)
	// FindByEmail compara e-mail exato, caso-insensitivo. nil,nil = sem match.
	FindByEmail(ctx context.Context, email string) (*LeadRef, error)
	// FindByPhone compara a forma canônica só-dígitos. nil,nil = sem match.
	FindByPhone(ctx context.Context, digits string) (*LeadRef, error)
}

type TaskFields struct {
	LeadID      int64
	Title       string
	Description string
	DueLabel    string
	Channel     string
	Origin      string
}

type TaskStore interface {
	Create(ctx context.Context, fields TaskFields) (int64, error)
}

type DealFields struct {
	LeadID  int64
	Title   string
	Value   int64
	Channel string
}

type DealStore interface {
	Create(ctx context.Context, fields DealFields) (int64, error)
}

type AutomationStep struct {
	Title       string
	Channel     string
	WaitMinutes int
}

type AutomationDef struct {
	ID    int64
	Name  string
	Steps []AutomationStep
}

type AutomationSource interface {
	ListActive(ctx context.Context, trigger string) ([]AutomationDef, error)
}

// ConversationEntry é uma linha emitida por turno processado: a mensagem do
// usuário, a resposta do agente e os eventos de auditoria do que disparou.
type ConversationEntry struct {
	EntryID string `json:"entry_id"`
	Role    string `json:"role"`
	Kind    string `json:"kind,omitempty"`
	Text    string `json:"text"`
}

type ConversationLog interface {
	Append(ctx context.Context, channel, peer string, entries []ConversationEntry) error
}

// ChannelStatus informa se o gateway do canal está pareado (para o aviso de
// conexão na resposta).
type ChannelStatus interface {
	Connected(ctx context.Context, channel string) (bool, error)
}

// ReplySender entrega a resposta automática pelo gateway do canal.
type ReplySender interface {
	SendText(ctx context.Context, channel, to, text string) error
}
