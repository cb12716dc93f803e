package binga_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/moudarir/binga"
	"github.com/moudarir/binga/internal/checksum"
	"github.com/moudarir/binga/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sandboxStoreID = "4010"
	sandboxKey     = "4010653ddd7e9b8cece2779bbed423ce"
)

func newTestClient(t *testing.T, handler http.Handler) *binga.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := binga.New(binga.Config{Environment: "dev", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestNew(t *testing.T) {
	t.Run("dev fills sandbox credentials", func(t *testing.T) {
		client, err := binga.New(binga.Config{Environment: "dev"})

		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("prod requires credentials at construction", func(t *testing.T) {
		_, err := binga.New(binga.Config{Environment: "prod", StoreID: "1", Username: "u", Password: "p"})

		ce, ok := binga.IsConfigError(err)
		require.True(t, ok)
		assert.Equal(t, "PrivateKey", ce.Field)
	})
}

func TestOrder(t *testing.T) {
	t.Run("hydrates a single order", func(t *testing.T) {
		var gotPath, gotAccept string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAccept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"success","orders":{"order":{"code":"C1","amount":"100.00","archived":"true"}}}`))
		}))

		order, err := client.Order(context.Background(), "C1")

		require.NoError(t, err)
		assert.Equal(t, "/bingaApi/api/orders/C1", gotPath)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, "C1", order.Code())
		assert.Equal(t, 100.0, order.Amount())
		assert.True(t, order.Archived())
	})

	t.Run("decoded error object wins over http status", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusOK,
			`{"result":"error","error":{"code":404,"message":"Not Found"}}`))

		_, err := client.Order(context.Background(), "missing")

		ge, ok := binga.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, 404, ge.Code)
		assert.Equal(t, "Not Found", ge.Message)
	})

	t.Run("error status with empty body uses reason phrase", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusUnauthorized, ""))

		_, err := client.Order(context.Background(), "C1")

		ge, ok := binga.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, 401, ge.Code)
		assert.Equal(t, "Unauthorized", ge.Message)
	})

	t.Run("empty 2xx body is ErrNoContent", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusOK, ""))

		_, err := client.Order(context.Background(), "C1")

		assert.ErrorIs(t, err, binga.ErrNoContent)
	})

	t.Run("xml response decodes", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/xml", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<response><result>success</result><orders><order><code>C7</code></order></orders></response>`))
		}))

		order, err := client.Order(context.Background(), "C7", binga.WithFormat(binga.FormatXML))

		require.NoError(t, err)
		assert.Equal(t, "C7", order.Code())
	})

	t.Run("network failure surfaces as TransportError", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client, err := binga.New(binga.Config{Environment: "dev", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Order(context.Background(), "C1")

		_, ok := binga.IsTransportError(err)
		assert.True(t, ok)
	})
}

func TestMerchantOrders(t *testing.T) {
	t.Run("sends long and short pagination params", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"success","orders":{"order":[{"code":"A"},{"code":"B"}]}}`))
		}))

		orders, err := client.MerchantOrders(context.Background(), binga.ListOptions{Page: 2, Limit: 10, Offset: 5})

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "A", orders[0].Code())
		assert.Equal(t, "B", orders[1].Code())
		assert.Equal(t, "2", gotQuery.Get("page"))
		assert.Equal(t, "10", gotQuery.Get("limit"))
		assert.Equal(t, "10", gotQuery.Get("l"))
		assert.Equal(t, "5", gotQuery.Get("offset"))
		assert.Equal(t, "5", gotQuery.Get("o"))
	})

	t.Run("defaults page 1 limit 20 offset 0", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"success"}`))
		}))

		orders, err := client.MerchantOrders(context.Background(), binga.ListOptions{})

		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Equal(t, "1", gotQuery.Get("page"))
		assert.Equal(t, "20", gotQuery.Get("limit"))
		assert.Equal(t, "0", gotQuery.Get("offset"))
	})

	t.Run("empty body lists as empty page", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusOK, ""))

		orders, err := client.MerchantOrders(context.Background(), binga.ListOptions{})

		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("gateway failure propagates", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusInternalServerError, ""))

		_, err := client.MerchantOrders(context.Background(), binga.ListOptions{})

		ge, ok := binga.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, 500, ge.Code)
		assert.Equal(t, "Internal Server Error", ge.Message)
	})
}

func TestStoreOrders(t *testing.T) {
	t.Run("scopes the path to the configured store", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"success","orders":{"order":[{"code":"S1"}]}}`))
		}))

		orders, err := client.StoreOrders(context.Background(), binga.ListOptions{})

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "/bingaApi/api/orders/store/"+sandboxStoreID, gotPath)
	})
}

func TestCharge(t *testing.T) {
	chargeResponse := `{"result":"success","orders":{"order":{"code":"NEW1","status":"created"}}}`

	t.Run("posts signed form to the pay endpoint", func(t *testing.T) {
		var gotPath string
		var gotForm url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chargeResponse))
		}))

		order, err := client.Pay(context.Background(), binga.ChargeRequest{
			Amount:     120.5,
			ExternalID: "ext-1",
			BuyerEmail: "buyer@shop.ma",
		})

		require.NoError(t, err)
		assert.Equal(t, "NEW1", order.Code())
		assert.Equal(t, "/bingaApi/api/orders/pay", gotPath)
		assert.Equal(t, sandboxStoreID, gotForm.Get("storeId"))
		assert.Equal(t, "1.1", gotForm.Get("apiVersion"))
		assert.Equal(t, "120.50", gotForm.Get("amount"))
		assert.Equal(t, "ext-1", gotForm.Get("externalId"))
		assert.Equal(t, "buyer@shop.ma", gotForm.Get("buyerEmail"))

		wantSum := checksum.Generate("pay", "120.50", sandboxStoreID, "ext-1", "buyer@shop.ma", sandboxKey)
		assert.Equal(t, wantSum, gotForm.Get("orderCheckSum"))

		expires, err := format.ParseTimestamp(gotForm.Get("expirationDate"))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), expires, time.Minute)
	})

	t.Run("book signs with the prepay tag", func(t *testing.T) {
		var gotForm url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chargeResponse))
		}))

		_, err := client.Book(context.Background(), binga.ChargeRequest{
			Amount:     50,
			ExternalID: "ext-2",
			BuyerEmail: "buyer@shop.ma",
		})

		require.NoError(t, err)
		wantSum := checksum.Generate("prepay", "50.00", sandboxStoreID, "ext-2", "buyer@shop.ma", sandboxKey)
		assert.Equal(t, wantSum, gotForm.Get("orderCheckSum"))
	})

	t.Run("expire days override", func(t *testing.T) {
		var gotForm url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chargeResponse))
		}))

		_, err := client.Pay(context.Background(), binga.ChargeRequest{
			Amount:     10,
			ExternalID: "ext-3",
			BuyerEmail: "b@x.ma",
			ExpireDays: 2,
		})

		require.NoError(t, err)
		expires, err := format.ParseTimestamp(gotForm.Get("expirationDate"))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 2), expires, time.Minute)
	})

	t.Run("extra fields win over injected defaults and join the checksum", func(t *testing.T) {
		var gotForm url.Values
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(chargeResponse))
		}))

		_, err := client.Pay(context.Background(), binga.ChargeRequest{
			Amount:     10,
			ExternalID: "ext-4",
			BuyerEmail: "b@x.ma",
			Extra: map[string]string{
				"amount":     "99.00", // preformatted, passes through
				"apiVersion": "1.0",
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "99.00", gotForm.Get("amount"))
		assert.Equal(t, "1.0", gotForm.Get("apiVersion"))

		// The checksum covers the caller's data, so the overridden amount
		// is what gets signed.
		wantSum := checksum.Generate("pay", "99.00", sandboxStoreID, "ext-4", "b@x.ma", sandboxKey)
		assert.Equal(t, wantSum, gotForm.Get("orderCheckSum"))
	})

	t.Run("gateway rejection carries code and message", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusOK,
			`{"result":"error","error":{"code":107,"message":"Invalid checksum"}}`))

		_, err := client.Pay(context.Background(), binga.ChargeRequest{
			Amount: 10, ExternalID: "x", BuyerEmail: "b@x.ma",
		})

		ge, ok := binga.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, 107, ge.Code)
		assert.Equal(t, "Invalid checksum", ge.Message)
	})
}

func TestGenerateCheckSum(t *testing.T) {
	client, err := binga.New(binga.Config{Environment: "dev"})
	require.NoError(t, err)

	req := binga.ChargeRequest{Amount: 100, ExternalID: "X1", BuyerEmail: "a@b.c"}

	t.Run("matches the raw digest", func(t *testing.T) {
		want := checksum.Generate("pay", "100.00", sandboxStoreID, "X1", "a@b.c", sandboxKey)
		assert.Equal(t, want, client.GenerateCheckSum(binga.ChargePay, req))
	})

	t.Run("unrecognized type falls back to prepay", func(t *testing.T) {
		assert.Equal(t,
			client.GenerateCheckSum(binga.ChargePrepay, req),
			client.GenerateCheckSum(binga.ChargeType("refund"), req),
		)
	})
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK, `{"result":`))

	_, err := client.Order(context.Background(), "C1")

	de, ok := binga.IsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, "json", de.Format)
	assert.Equal(t, []byte(`{"result":`), de.Body)
}
