// Package httpapi реализует шлюз заказов поверх HTTP/JSON API сервиса заказов.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client — HTTP-клиент сервиса заказов, реализует domain.OrderGateway.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Entry

	// inflight — число запущенных записывающих запросов; ядро читает его
	// через IsBusy, чтобы фоновый опрос не пересёкся с записью в полёте.
	inflight atomic.Int32
}

// NewClient создаёт клиент для базового URL API.
func NewClient(baseURL, token string, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.WithField("component", "gateway-http")
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// IsBusy сообщает, есть ли запись в полёте.
func (c *Client) IsBusy() bool {
	return c.inflight.Load() > 0
}

// FetchOrders загружает полную коллекцию заказов.
func (c *Client) FetchOrders(ctx context.Context, forceFresh bool) ([]domain.Order, error) {
	url := c.baseURL + "/api/orders"
	if forceFresh {
		url += "?fresh=1"
	}

	var payload []orderDTO
	if err := c.do(ctx, http.MethodGet, url, nil, &payload, false); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, len(payload))
	for i, dto := range payload {
		orders[i] = dto.toDomain()
	}
	return orders, nil
}

// SetOfferItemRank отправляет атомарное изменение ранга.
func (c *Client) SetOfferItemRank(ctx context.Context, req domain.RankRequest) error {
	body := rankRequestDTO{
		VIN:           req.VIN,
		ItemName:      req.ItemName,
		OfferID:       req.OfferID,
		AdminPrice:    req.Admin.Price,
		AdminCurrency: req.Admin.Currency,
		AdminComment:  req.Admin.Comment,
		Reset:         req.Reset,
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/orders/rank", body, nil, true)
}

// ApproveOrder подтверждает одобрение заказа.
func (c *Client) ApproveOrder(ctx context.Context, orderID string) error {
	url := fmt.Sprintf("%s/api/orders/%s/approve", c.baseURL, orderID)
	return c.do(ctx, http.MethodPost, url, nil, nil, true)
}

// RefuseOrder аннулирует заказ с причиной.
func (c *Client) RefuseOrder(ctx context.Context, orderID, reason, actor string) error {
	url := fmt.Sprintf("%s/api/orders/%s/refuse", c.baseURL, orderID)
	body := refuseRequestDTO{Reason: reason, Actor: actor}
	return c.do(ctx, http.MethodPost, url, body, nil, true)
}

// UpdateOrderContent сохраняет правки содержимого заказа.
func (c *Client) UpdateOrderContent(ctx context.Context, orderID string, content domain.OrderContentUpdate) error {
	url := fmt.Sprintf("%s/api/orders/%s/content", c.baseURL, orderID)
	return c.do(ctx, http.MethodPost, url, contentUpdateToDTO(content), nil, true)
}

// do выполняет запрос, декодирует ответ в out (если задан) и переводит сбои
// в доменную таксономию: сетевые — в TransportError, отказ API по уже
// применённой мутации — в ConflictError.
func (c *Client) do(ctx context.Context, method, url string, body, out interface{}, write bool) error {
	op := method + " " + url

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if write {
		c.inflight.Add(1)
		defer c.inflight.Add(-1)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Warn("gateway request failed")
		return domain.NewTransportError(op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return domain.NewTransportError(op, fmt.Errorf("service returned %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		if write {
			return &domain.ConflictError{Op: op, Err: domain.ErrOrderNotFound}
		}
		return domain.ErrOrderNotFound
	case resp.StatusCode >= 400:
		apiErr := fmt.Errorf("service returned %s", resp.Status)
		if write {
			return &domain.ConflictError{Op: op, Err: apiErr}
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewTransportError(op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

var _ domain.OrderGateway = (*Client)(nil)
