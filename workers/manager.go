package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PollerManager sobe e derruba um poller por canal configurado. Ensure é
// idempotente; Stop cancela o contexto do poller e espera o loop sair, para
// não sobrar ticker órfão quando um canal é desconfigurado.
type PollerManager struct {
	mu       sync.Mutex
	interval time.Duration
	source   EventSource
	proc     Processor
	log      *zap.Logger

	running map[string]*runningPoller
}

type runningPoller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPollerManager(interval time.Duration, source EventSource, proc Processor, log *zap.Logger) *PollerManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &PollerManager{
		interval: interval,
		source:   source,
		proc:     proc,
		log:      log,
		running:  make(map[string]*runningPoller),
	}
}

// Ensure garante um poller rodando para o canal. Chamada repetida é no-op.
func (m *PollerManager) Ensure(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.running[channel]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rp := &runningPoller{cancel: cancel, done: make(chan struct{})}
	m.running[channel] = rp

	p := NewPoller(channel, m.interval, m.source, m.proc, m.log)
	go func() {
		defer close(rp.done)
		p.Run(ctx)
	}()

	m.log.Info("poller iniciado", zap.String("channel", channel))
}

// Stop derruba o poller do canal, se houver, e espera ele sair.
func (m *PollerManager) Stop(channel string) {
	m.mu.Lock()
	rp, ok := m.running[channel]
	if ok {
		delete(m.running, channel)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	rp.cancel()
	<-rp.done
	m.log.Info("poller encerrado", zap.String("channel", channel))
}

// StopAll derruba todos os pollers. Usado no desligamento do processo.
func (m *PollerManager) StopAll() {
	m.mu.Lock()
	all := m.running
	m.running = make(map[string]*runningPoller)
	m.mu.Unlock()

	for _, rp := range all {
		rp.cancel()
	}
	for _, rp := range all {
		<-rp.done
	}
}

// Running informa se o canal tem poller ativo.
func (m *PollerManager) Running(channel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[channel]
	return ok
}
