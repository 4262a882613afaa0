package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig: canal sem base url/credencial; falha rápida, sem rede.
	ErrInvalidConfig = errors.New("gateway não configurado: base url vazia")
	// ErrEndpointNotFound: nenhuma das convenções de caminho existe no provedor.
	ErrEndpointNotFound = errors.New("gateway: nenhum caminho conhecido atendeu")
)

// APIError é uma resposta não-2xx definitiva (qualquer coisa que não seja o
// 404 de "esse formato de rota não existe aqui").
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("gateway api error: status=%d path=%s body=%s", e.StatusCode, e.Path, e.Body)
}

// Config identifica um provedor: endereço e credencial, por canal.
type Config struct {
	BaseURL string
	APIKey  string
}

// Result é a resposta da tentativa que decidiu a chamada. O corpo é
// decodificado como JSON quando dá; senão fica o texto cru em Text.
type Result struct {
	StatusCode int            `json:"statusCode"`
	Path       string         `json:"path"`
	JSON       map[string]any `json:"json,omitempty"`
	Text       string         `json:"text,omitempty"`
}

type Client struct {
	HTTP *http.Client
	Log  *zap.Logger
}

func NewClient(log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}
	return Client{
		HTTP: &http.Client{Timeout: 30 * time.Second},
		Log:  log,
	}
}

// Dispatch tenta os caminhos candidatos EM ORDEM contra o provedor. 404
// significa "esse formato de rota não existe aqui" e avança para o próximo;
// qualquer outro erro (status ou transporte) encerra na hora, porque é falha
// real no endpoint certo. Se todos devolvem 404, vale o último 404.
func (c Client) Dispatch(ctx context.Context, cfg Config, method string, candidatePaths []string, body any) (Result, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Result{}, ErrInvalidConfig
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return Result{}, err
		}
	}

	var last Result
	for _, path := range candidatePaths {
		res, err := c.attempt(ctx, cfg, base, method, path, payload)
		if err != nil {
			return res, err
		}
		if res.StatusCode == http.StatusNotFound {
			c.Log.Debug("gateway path não suportado, tentando próximo",
				zap.String("path", path))
			last = res
			continue
		}
		if res.StatusCode >= 300 {
			return res, APIError{StatusCode: res.StatusCode, Path: res.Path, Body: res.Text}
		}
		return res, nil
	}
	return last, fmt.Errorf("%w: último caminho %s", ErrEndpointNotFound, last.Path)
}

func (c Client) attempt(ctx context.Context, cfg Config, base, method, path string, payload []byte) (Result, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	url := base + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		// o provedor pode esperar a chave crua ou bearer; manda as duas
		req.Header.Set("apikey", key)
		req.Header.Set("Authorization", "Bearer "+key)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	res := Result{StatusCode: resp.StatusCode, Path: path}
	if len(raw) > 0 {
		var tree map[string]any
		if json.Unmarshal(raw, &tree) == nil {
			res.JSON = tree
		} else {
			res.Text = string(raw)
		}
	}
	if res.StatusCode >= 300 && res.Text == "" && res.JSON != nil {
		// erro com corpo JSON ainda precisa aparecer na mensagem
		res.Text = string(raw)
	}
	return res, nil
}
