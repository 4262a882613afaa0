package gateway

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
)

// Convenções de caminho conhecidas, em ordem de preferência. Cada provedor
// implementa uma delas; o Dispatch descobre qual na base do 404.
var (
	createSessionPaths = []string{
		"/instance/create",
		"/instance/init",
		"/session/create",
	}
	connectionStatePaths = []string{
		"/instance/connectionState/{instance}",
		"/instance/connection-state/{instance}",
		"/instance/{instance}/status",
	}
	fetchQRPaths = []string{
		"/instance/connect/{instance}",
		"/instance/qr/{instance}",
		"/instance/{instance}/qrcode",
	}
	sendTextPaths = []string{
		"/message/sendText/{instance}",
		"/message/text/{instance}",
		"/send/text/{instance}",
	}
)

// ShapeRule extrai um valor de um payload cujo aninhamento varia por
// provedor. Lista ordenada, primeiro valor não-vazio vence; formato novo de
// provedor é só mais uma linha.
type ShapeRule struct {
	Name string
	Path []string
}

var stateShapes = []ShapeRule{
	{"instance.state", []string{"instance", "state"}},
	{"state", []string{"state"}},
	{"status", []string{"status"}},
	{"connectionStatus", []string{"connectionStatus"}},
}

var qrShapes = []ShapeRule{
	{"base64", []string{"base64"}},
	{"qrcode.base64", []string{"qrcode", "base64"}},
	{"qrcode", []string{"qrcode"}},
	{"code", []string{"code"}},
}

// FirstShape percorre as regras em ordem e devolve o primeiro valor string
// não-vazio encontrado na árvore. Também serve ao webhook de entrada, que
// lida com a mesma variação de formato.
func FirstShape(rules []ShapeRule, tree map[string]any) string {
	for _, rule := range rules {
		var cur any = tree
		for _, seg := range rule.Path {
			m, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = m[seg]
		}
		if s, ok := cur.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func fillInstance(paths []string, instance string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = strings.ReplaceAll(p, "{instance}", instance)
	}
	return out
}

// CreateSession registra a instância no provedor (primeiro passo do
// pareamento).
func (c Client) CreateSession(ctx context.Context, cfg Config, instance string) (Result, error) {
	body := map[string]any{
		"instanceName": instance,
		"qrcode":       true,
	}
	return c.Dispatch(ctx, cfg, http.MethodPost, createSessionPaths, body)
}

// ConnectionState devolve o estado da conexão ("open", "connecting", ...)
// extraído do primeiro formato de resposta que tiver valor.
func (c Client) ConnectionState(ctx context.Context, cfg Config, instance string) (string, error) {
	res, err := c.Dispatch(ctx, cfg, http.MethodGet, fillInstance(connectionStatePaths, instance), nil)
	if err != nil {
		return "", err
	}
	return FirstShape(stateShapes, res.JSON), nil
}

// IsConnected interpreta o estado reportado pelo provedor.
func IsConnected(state string) bool {
	return strings.EqualFold(state, "open") || strings.EqualFold(state, "connected")
}

// FetchQR busca a credencial de pareamento e devolve algo pronto pra exibir:
// base64 puro vira data-URI; o que já vier prefixado (ou for código de
// pareamento) passa direto.
func (c Client) FetchQR(ctx context.Context, cfg Config, instance string) (string, error) {
	res, err := c.Dispatch(ctx, cfg, http.MethodGet, fillInstance(fetchQRPaths, instance), nil)
	if err != nil {
		return "", err
	}
	return NormalizeQR(FirstShape(qrShapes, res.JSON)), nil
}

// NormalizeQR deixa o payload do QR pronto para um <img>.
func NormalizeQR(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" || strings.HasPrefix(payload, "data:") {
		return payload
	}
	compact := strings.Join(strings.Fields(payload), "")
	if _, err := base64.StdEncoding.DecodeString(compact); err == nil && len(compact) >= 16 {
		return "data:image/png;base64," + compact
	}
	return payload
}

// SendText envia uma mensagem de texto. O corpo carrega os dois formatos de
// campo que os provedores conhecidos aceitam.
func (c Client) SendText(ctx context.Context, cfg Config, instance, to, text string) (Result, error) {
	body := map[string]any{
		"number": to,
		"text":   text,
		"textMessage": map[string]any{
			"text": text,
		},
	}
	return c.Dispatch(ctx, cfg, http.MethodPost, fillInstance(sendTextPaths, instance), body)
}
