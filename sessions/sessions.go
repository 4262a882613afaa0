package sessions

import (
	"sync"
	"time"
)

// Draft acumula os fatos conhecidos de um peer ao longo da conversa.
// Pertence à sessão; só o orquestrador escreve nele.
type Draft struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Company      string `json:"company,omitempty"`
	Intent       string `json:"intent,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	Location     string `json:"location,omitempty"`
	Budget       int64  `json:"budget,omitempty"`
}

// Session é o estado de conversa de um par (canal, peer). LeadID, DealID e
// AutomationsTriggered são trancas de idempotência de mão única: uma vez
// setadas, nunca voltam atrás.
type Session struct {
	sync.Mutex `json:"-"`

	Channel string `json:"channel"`
	Peer    string `json:"peer"`

	Draft Draft  `json:"draft"`
	Score int    `json:"score"`
	Stage string `json:"stage,omitempty"`

	LeadID *int64 `json:"leadId,omitempty"`
	DealID *int64 `json:"dealId,omitempty"`

	AutomationsTriggered bool `json:"automationsTriggered"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type key struct {
	channel string
	peer    string
}

// Store guarda as sessões em memória pelo tempo de vida do processo.
// Sessões nunca são removidas; chaves diferentes avançam em paralelo e a
// mesma chave serializa pelo mutex da própria sessão.
type Store struct {
	mu       sync.RWMutex
	sessions map[key]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[key]*Session)}
}

// Get devolve a sessão do par (canal, peer), criando na primeira mensagem.
// O chamador deve segurar sess.Lock() durante todo o read-modify-write.
func (s *Store) Get(channel, peer string) *Session {
	k := key{channel: channel, peer: peer}

	s.mu.RLock()
	sess, ok := s.sessions[k]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[k]; ok {
		return sess
	}
	sess = &Session{
		Channel:   channel,
		Peer:      peer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.sessions[k] = sess
	return sess
}

// Len é usado só por métricas/diagnóstico.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
