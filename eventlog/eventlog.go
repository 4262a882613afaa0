package eventlog

import (
	"strings"
	"sync"
	"time"
)

const DEFAULT_CAPACITY = 500

// Event é uma mensagem recebida já admitida no log. Imutável depois do
// Admit; Seq é atribuído pelo log e nunca é reaproveitado.
type Event struct {
	Seq        int64     `json:"seq"`
	Channel    string    `json:"channel"`
	Sender     string    `json:"sender"`
	Text       string    `json:"text"`
	Author     string    `json:"author,omitempty"`
	FromMe     bool      `json:"fromMe,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Log é a fila de entrada: append-only, capacidade limitada, seq estritamente
// crescente pela vida inteira do processo (mesmo depois de descartar os mais
// antigos o contador nunca volta). Admit e ReadAfter se excluem mutuamente.
type Log struct {
	mu       sync.Mutex
	capacity int
	nextSeq  int64
	events   []Event
}

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DEFAULT_CAPACITY
	}
	return &Log{
		capacity: capacity,
		nextSeq:  1,
	}
}

// Admit registra o evento e devolve o seq atribuído. Ecos (fromMe) e eventos
// sem texto ou sem remetente são recusados ANTES da atribuição de seq: evento
// recusado não consome número nem capacidade.
func (l *Log) Admit(ev Event) (int64, bool) {
	ev.Text = strings.TrimSpace(ev.Text)
	ev.Sender = strings.TrimSpace(ev.Sender)
	if ev.FromMe || ev.Text == "" || ev.Sender == "" {
		return 0, false
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ev.Seq = l.nextSeq
	l.nextSeq++
	l.events = append(l.events, ev)
	if len(l.events) > l.capacity {
		// descarta do início; os seq já emitidos seguem valendo
		excess := len(l.events) - l.capacity
		l.events = append([]Event(nil), l.events[excess:]...)
	}
	return ev.Seq, true
}

// ReadAfter devolve os eventos com seq > cursor e o maior seq já atribuído,
// para o consumidor avançar mesmo em leituras vazias. Sem Admit no meio,
// duas chamadas seguidas devolvem o mesmo resultado.
func (l *Log) ReadAfter(cursor int64) ([]Event, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.nextSeq - 1
	idx := len(l.events)
	for i, ev := range l.events {
		if ev.Seq > cursor {
			idx = i
			break
		}
	}
	if idx == len(l.events) {
		return nil, next
	}
	out := make([]Event, len(l.events)-idx)
	copy(out, l.events[idx:])
	return out, next
}

// Len devolve quantos eventos ainda estão retidos no buffer.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
