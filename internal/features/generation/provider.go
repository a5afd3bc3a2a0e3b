// Package generation — provider.go описывает контракт генерации
// и тонкий HTTP-клиент к Replicate.
//
// Ядру от провайдера нужно немногое: отдать задание, получить ссылку
// на результат или ошибку. Всё остальное (параметры моделей, очереди
// на стороне провайдера) — забота самого провайдера.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/pricing"
)

// Job — одно задание на генерацию.
type Job struct {
	Mode   pricing.Mode
	Model  string
	Prompt string
}

// Result — результат генерации.
type Result struct {
	URL string
}

// Provider выполняет задание и возвращает ссылку на результат.
type Provider interface {
	Generate(ctx context.Context, job Job) (*Result, error)
}

// ReplicateProvider — клиент к Replicate-совместимому API предсказаний.
type ReplicateProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewReplicateProvider создаёт клиент генерации.
func NewReplicateProvider(baseURL, token string, timeout time.Duration) *ReplicateProvider {
	return &ReplicateProvider{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// replicateRequest — тело запроса к API предсказаний.
type replicateRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

// replicateResponse — интересующая нас часть ответа.
type replicateResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// Generate отправляет задание и синхронно ждёт результат
// (заголовок Prefer: wait).
func (p *ReplicateProvider) Generate(ctx context.Context, job Job) (*Result, error) {
	body, err := json.Marshal(replicateRequest{
		Version: job.Model,
		Input:   map[string]any{"prompt": job.Prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации задания: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: чтение ответа: %v", common.ErrExternalService, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: статус %d", common.ErrExternalService, resp.StatusCode)
	}

	var parsed replicateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: разбор ответа: %v", common.ErrExternalService, err)
	}
	if parsed.Status != "succeeded" {
		return nil, fmt.Errorf("%w: генерация завершилась со статусом %q (%s)",
			common.ErrExternalService, parsed.Status, parsed.Error)
	}

	url, err := outputURL(parsed.Output)
	if err != nil {
		return nil, err
	}
	return &Result{URL: url}, nil
}

// outputURL достаёт ссылку из output: провайдер отдаёт либо строку,
// либо массив строк — берём первую.
func outputURL(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	return "", fmt.Errorf("%w: пустой output генерации", common.ErrExternalService)
}
