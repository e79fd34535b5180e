package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
	"github.com/vladislavdragonenkov/partsdesk/internal/gateway/httpapi"
)

func clientLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return log.NewEntry(logger)
}

func TestFetchOrders_DecodesPayload(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "42",
			"vin": "XTA210990Y2756389",
			"clientName": "Иванов",
			"date": "15.03.2026",
			"car": {"brand": "Lada", "model": "Vesta", "year": "2021", "bodyType": "седан", "editedYear": "2022"},
			"orderedItems": [{"name": "Бампер", "qty": 1, "editedName": "Бампер передний"}],
			"offers": [{"id": "offer-1", "clientName": "Поставщик", "items": [
				{"itemName": "Бампер", "qty": 1, "priceMinor": 1250000, "currency": "RUB", "rank": "LEADER"}
			]}],
			"status": "OPEN"
		}]`))
	}))
	defer srv.Close()

	c := httpapi.NewClient(srv.URL, "secret-token", clientLogger())
	orders, err := c.FetchOrders(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, "/api/orders?fresh=1", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, "42", order.ID)
	assert.Equal(t, "XTA210990Y2756389", order.VIN)
	assert.Equal(t, "15.03.2026", order.CreatedAt)
	assert.Equal(t, "2022", order.EffectiveYear())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Бампер передний", order.Items[0].Label())
	require.Len(t, order.Offers, 1)
	assert.True(t, order.Offers[0].Items[0].Rank.IsLeader())
}

func TestSetOfferItemRank_SendsWirePayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders/rank", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	price := int64(990000)
	c := httpapi.NewClient(srv.URL, "", clientLogger())
	err := c.SetOfferItemRank(context.Background(), domain.RankRequest{
		VIN:      "VIN-1",
		ItemName: "Фара",
		OfferID:  "offer-9",
		Admin:    domain.AdminOfferFields{Price: &price, Currency: "RUB"},
	})
	require.NoError(t, err)

	assert.Equal(t, "VIN-1", got["vin"])
	assert.Equal(t, "Фара", got["itemName"])
	assert.Equal(t, "offer-9", got["offerId"])
	assert.Equal(t, float64(990000), got["adminPrice"])
	assert.Equal(t, "RUB", got["adminCurrency"])
	_, hasReset := got["reset"]
	assert.False(t, hasReset, "reset omitted when false")
}

func TestRefuseOrder_PathAndBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/42/refuse", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpapi.NewClient(srv.URL, "", clientLogger())
	require.NoError(t, c.RefuseOrder(context.Background(), "42", "клиент передумал", "admin"))

	assert.Equal(t, "клиент передумал", got["reason"])
	assert.Equal(t, "admin", got["actor"])
}

func TestUpdateOrderContent_PathAndBody(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/7/content", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpapi.NewClient(srv.URL, "", clientLogger())
	err := c.UpdateOrderContent(context.Background(), "7", domain.OrderContentUpdate{
		Car:   domain.CarEdit{Brand: "Kia", Year: "2019"},
		Items: []domain.ItemEdit{{Name: "Капот", EditedQty: 2}},
	})
	require.NoError(t, err)

	car := got["car"].(map[string]interface{})
	assert.Equal(t, "Kia", car["brand"])
	assert.Equal(t, "2019", car["year"])
	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]interface{})["editedQty"])
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "5xx becomes transport error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsTransport(err))
			},
		},
		{
			name:   "404 on write becomes conflict with ErrOrderNotFound",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsConflict(err))
				assert.ErrorIs(t, err, domain.ErrOrderNotFound)
			},
		},
		{
			name:   "other 4xx on write becomes conflict",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsConflict(err))
				assert.False(t, domain.IsTransport(err))
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := httpapi.NewClient(srv.URL, "", clientLogger())
			err := c.ApproveOrder(context.Background(), "42")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestFetchOrders_404IsNotConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := httpapi.NewClient(srv.URL, "", clientLogger())
	_, err := c.FetchOrders(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.False(t, domain.IsConflict(err))
}

func TestConnectionFailure_IsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // соединение гарантированно откажет

	c := httpapi.NewClient(srv.URL, "", clientLogger())
	_, err := c.FetchOrders(context.Background(), false)
	assert.True(t, domain.IsTransport(err))
}

func TestIsBusy_TracksWritesOnly(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			<-release
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()
	defer close(release)

	c := httpapi.NewClient(srv.URL, "", clientLogger())

	// Чтение не считается записью в полёте.
	_, err := c.FetchOrders(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, c.IsBusy())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.ApproveOrder(context.Background(), "42")
	}()

	require.Eventually(t, func() bool {
		return c.IsBusy()
	}, time.Second, time.Millisecond)

	release <- struct{}{}
	<-done
	assert.False(t, c.IsBusy())
}
