package workers

import (
	"context"
	"time"

	"imobot/eventlog"
	"imobot/pipeline"

	"go.uber.org/zap"
)

const DEFAULT_POLL_INTERVAL = 1500 * time.Millisecond

// EventSource é de onde o poller lê eventos pendentes: o log em memória do
// próprio processo ou um receptor remoto (eventlog.RelayClient).
type EventSource interface {
	Read(ctx context.Context, after int64) ([]eventlog.Event, int64, error)
}

// LocalSource adapta o log em processo ao contrato do poller.
type LocalSource struct {
	Log *eventlog.Log
}

func (s LocalSource) Read(_ context.Context, after int64) ([]eventlog.Event, int64, error) {
	events, next := s.Log.ReadAfter(after)
	return events, next, nil
}

// Processor é o lado do pipeline acionado para cada evento drenado.
type Processor interface {
	Process(ctx context.Context, in pipeline.Inbound) (pipeline.Outcome, error)
}

// Poller drena o log de eventos de um canal. Mantém cursor próprio, lê no
// intervalo fixo e avança o cursor sempre, mesmo em leitura vazia, para
// acompanhar o descarte dos eventos mais antigos. Falha de leitura gera um
// aviso uma única vez (não a cada intervalo) e o loop segue tentando.
type Poller struct {
	channel  string
	interval time.Duration
	source   EventSource
	proc     Processor
	log      *zap.Logger

	cursor int64
	warned bool
}

func NewPoller(channel string, interval time.Duration, source EventSource, proc Processor, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DEFAULT_POLL_INTERVAL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		channel:  channel,
		interval: interval,
		source:   source,
		proc:     proc,
		log:      log,
	}
}

// Run bloqueia até o contexto ser cancelado (canal desconfigurado ou
// desligamento do processo).
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	events, next, err := p.source.Read(ctx, p.cursor)
	if err != nil {
		if !p.warned {
			p.log.Warn("leitura de eventos falhou; seguirei tentando no mesmo intervalo",
				zap.String("channel", p.channel),
				zap.Error(err))
			p.warned = true
		}
		return
	}
	if p.warned {
		p.log.Info("leitura de eventos normalizada", zap.String("channel", p.channel))
		p.warned = false
	}

	// avança mesmo sem eventos novos, senão o cursor fica para trás do descarte
	p.cursor = next

	for _, ev := range events {
		if ev.Channel != p.channel {
			continue
		}
		in := pipeline.Inbound{
			Channel:   ev.Channel,
			Peer:      ev.Sender,
			Text:      ev.Text,
			Author:    ev.Author,
			Source:    pipeline.SOURCE_WEBHOOK,
			AutoReply: true,
		}
		if _, err := p.proc.Process(ctx, in); err != nil {
			p.log.Error("falha ao processar evento",
				zap.Int64("seq", ev.Seq),
				zap.String("channel", ev.Channel),
				zap.Error(err))
		}
	}
}
