package phemex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(t *testing.T, handler http.HandlerFunc, opt Options) *Connection {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opt.APIURL = srv.URL
	// Tests never wait on the bucket unless they ask to.
	if opt.RateLimit == 0 {
		opt.RateLimit = 1000
	}
	if opt.RateCapacity == 0 {
		opt.RateCapacity = 1000
	}

	return New(opt)
}

func TestNewDefaults(t *testing.T) {
	conn := New(Options{})
	assert.Equal(t, DefaultAPIURL, conn.apiURL)
	assert.Equal(t, DefaultRequestTimeout, conn.client.Timeout)
	assert.Equal(t, PublicCredentials{}, conn.creds)
}

func TestNewStripsTrailingSlash(t *testing.T) {
	conn := New(Options{APIURL: "https://api.phemex.com/"})
	assert.Equal(t, "https://api.phemex.com", conn.apiURL)
}

func TestSendMessageDecodesExactDecimals(t *testing.T) {
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"OK","data":{"ratioScale":8,"products":[
			{"symbol":"BTCUSD","tickSize":0.5,"contractSize":1.00000001}]}}`))
	}, Options{})

	products, err := conn.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products.Products, 1)

	// The literals survive verbatim; a float64 path would mangle the
	// trailing digit of 1.00000001.
	assert.Equal(t, "0.5", products.Products[0].TickSize.String())
	assert.Equal(t, "1.00000001", products.Products[0].ContractSize.String())
}

func TestSendMessageClassifiesEnvelopeCode(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"success", `{"code":0,"msg":"OK","data":{}}`, nil},
		{"success boundary", `{"code":200,"msg":"OK","data":{}}`, nil},
		{"credential", `{"code":401,"msg":"denied","data":{}}`, ErrCredential},
		{"authentication", `{"code":10500,"msg":"bad signature","data":{}}`, ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, Options{})

			_, err := conn.SendMessage(context.Background(), "GET", "/x", nil, nil)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSendMessageGenericAPIError(t *testing.T) {
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":99999,"msg":"kaboom","data":{}}`))
	}, Options{})

	_, err := conn.SendMessage(context.Background(), "GET", "/x", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(99999), apiErr.Code)
	assert.Equal(t, "kaboom", apiErr.Msg)
}

func TestSendMessageSignsRequest(t *testing.T) {
	fixClock(t, 1_000_000_000)

	var gotSignature, gotToken string
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("x-phemex-request-signature")
		gotToken = r.Header.Get("x-phemex-access-token")
		w.Write([]byte(`{"code":0,"msg":"OK","data":{}}`))
	}, Options{
		Credentials: AuthCredentials{APIKey: testAPIKey, SecretKey: testSecret},
	})

	_, err := conn.SendMessage(context.Background(), "GET", "/exchange/public/products", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "84eafa93f44c6f0c1c99d08b3d6eebb755678452520a3052fa8a0a2d6c4ec6d0", gotSignature)
	assert.Equal(t, testAPIKey, gotToken)
}

func TestSendMessageThrottles(t *testing.T) {
	var calls atomic.Int64
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"code":0,"msg":"OK","data":{}}`))
	}, Options{
		// One token up front, 10/s refill: the 3rd call cannot complete
		// before ~200ms have passed.
		RateLimit:    10,
		RateCapacity: 1,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := conn.SendMessage(context.Background(), "GET", "/x", nil, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestSendMessageRateLimitRespectsContext(t *testing.T) {
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"OK","data":{}}`))
	}, Options{
		RateLimit:    0.001,
		RateCapacity: 1,
	})

	// Drain the single token.
	_, err := conn.SendMessage(context.Background(), "GET", "/x", nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = conn.SendMessage(ctx, "GET", "/x", nil, nil)
	require.Error(t, err)
}

func TestSendMessageTimeout(t *testing.T) {
	conn := newTestConn(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"code":0,"msg":"OK","data":{}}`))
	}, Options{
		RequestTimeout: 20 * time.Millisecond,
	})

	_, err := conn.SendMessage(context.Background(), "GET", "/x", nil, nil)
	require.Error(t, err)
}
