package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer replies with the text of the request's first message part so
// each call can be matched to its own reply.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := ""
		if len(body.Messages) > 0 && len(body.Messages[0].Content) > 0 {
			text = body.Messages[0].Content[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "echo: " + text}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Defaults(t *testing.T) {
	c := New("key")
	assert.Equal(t, APIURL, c.Endpoint())
	assert.Equal(t, time.Duration(0), c.http.Timeout)
	assert.Nil(t, c.log)
}

func TestWithTimeout_DoesNotMutateSharedClient(t *testing.T) {
	shared := &http.Client{}
	c := New("key", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Equal(t, time.Duration(0), shared.Timeout)
}

func TestCall_SendsHeadersAndSynthesizedMessages(t *testing.T) {
	var (
		gotHeaders http.Header
		gotBody    map[string]any
		gotMethod  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"\"Hello\""}}]}`)
	}))
	defer srv.Close()

	c := New("secret-key", WithEndpoint(srv.URL))
	resp, err := c.Call(context.Background(), "openai/gpt-4o", "hi there", nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "Bearer secret-key", gotHeaders.Get("Authorization"))
	assert.Empty(t, gotHeaders.Get("HTTP-Referer"))
	assert.Empty(t, gotHeaders.Get("X-Title"))

	assert.Equal(t, "openai/gpt-4o", gotBody["model"])
	assert.Equal(t, []any{
		map[string]any{
			"role":    "user",
			"content": []any{map[string]any{"type": "text", "text": "hi there"}},
		},
	}, gotBody["messages"])
	assert.NotContains(t, gotBody, "temperature")
	assert.NotContains(t, gotBody, "response_schema")

	text, err := resp.GetResponse()
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestComplexCall_SendsOptionalFieldsAndAttribution(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := New("k", WithEndpoint(srv.URL), WithReferer("https://example.com"), WithTitle("orcall"))
	schema := map[string]any{"type": "object"}
	params := Build("m", []any{map[string]any{"role": "system", "content": "be brief"}}).
		WithTemperature(0.2).
		WithResponseSchema(schema)

	_, err := c.ComplexCall(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 0.2, gotBody["temperature"])
	assert.Equal(t, schema, gotBody["response_schema"])
	assert.Equal(t, "https://example.com", gotHeaders.Get("HTTP-Referer"))
	assert.Equal(t, "orcall", gotHeaders.Get("X-Title"))
}

func TestComplexCall_InvalidParams(t *testing.T) {
	c := New("k", WithEndpoint("http://127.0.0.1:0"))
	_, err := c.ComplexCall(context.Background(), Build("", []any{}))

	var se *SerializationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpEncode, se.Op)
}

func TestComplexCall_UnencodableSchema(t *testing.T) {
	c := New("k", WithEndpoint("http://127.0.0.1:0"))
	_, err := c.ComplexCall(context.Background(), Build("m", []any{}).WithResponseSchema(make(chan int)))

	var se *SerializationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpEncode, se.Op)
}

func TestComplexCall_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New("k", WithEndpoint(url))
	_, err := c.Call(context.Background(), "m", "hi", nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "do", te.Op)
	assert.Zero(t, te.StatusCode)
}

func TestComplexCall_ContextCanceled(t *testing.T) {
	srv := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("k", WithEndpoint(srv.URL)).Call(ctx, "m", "hi", nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComplexCall_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"No auth credentials found","code":401}}`)
	}))
	defer srv.Close()

	_, err := New("bad", WithEndpoint(srv.URL)).Call(context.Background(), "m", "hi", nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, "No auth credentials found", te.Message)
	assert.Contains(t, te.Error(), "http 401")
}

func TestComplexCall_HTTPErrorStatusPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	}))
	defer srv.Close()

	_, err := New("k", WithEndpoint(srv.URL)).Call(context.Background(), "m", "hi", nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Empty(t, te.Message)
	assert.Contains(t, te.Error(), "upstream down")
}

func TestComplexCall_DecodeErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":    "<html>oops</html>",
		"json array":  `[{"choices":[]}]`,
		"json null":   "null",
		"json string": `"hello"`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			_, err := New("k", WithEndpoint(srv.URL)).Call(context.Background(), "m", "hi", nil)

			var se *SerializationError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, OpDecode, se.Op)
		})
	}
}

func TestComplexCall_EmptyChoicesIsNotATransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	resp, err := New("k", WithEndpoint(srv.URL)).Call(context.Background(), "m", "hi", nil)
	require.NoError(t, err)

	_, err = resp.GetResponse()
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestComplexCall_LoggerReceivesEnvelope(t *testing.T) {
	srv := echoServer(t)
	log := &recordingLogger{}

	resp, err := New("k", WithEndpoint(srv.URL), WithLogger(log)).Call(context.Background(), "m", "hi", nil)
	require.NoError(t, err)
	require.Len(t, log.msgs, 1)
	assert.Equal(t, "chat completion reply", log.msgs[0])
	assert.NotNil(t, resp.Envelope()["choices"])
}

func TestCall_ConcurrentCallsAreIndependent(t *testing.T) {
	srv := echoServer(t)
	c := New("k", WithEndpoint(srv.URL))

	const n = 32
	var wg sync.WaitGroup
	got := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Call(context.Background(), "m", fmt.Sprintf("prompt-%d", i), nil)
			if err != nil {
				errs[i] = err
				return
			}
			got[i], errs[i] = resp.GetResponse()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("echo: prompt-%d", i), got[i])
	}
}
