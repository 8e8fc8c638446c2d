package metagenanthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
		  "id": "msg_1",
		  "type": "message",
		  "role": "assistant",
		  "model": "claude-sonnet-4-20250514",
		  "stop_reason": "end_turn",
		  "content": [{"type": "text", "text": "Here you go:\n{\"title\":\"Ana Ruiz\",\"description\":\"Profile of Ana Ruiz.\",\"slug\":\"ana-ruiz\"}"}],
		  "usage": {"input_tokens": 10, "output_tokens": 20}
		}`)
	}))
	defer srv.Close()

	c := New("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	meta, err := c.NewGenerator().Generate(context.Background(), seojob.GenerationContext{Title: "Ana Ruiz", ContentKind: "Profile"})
	require.NoError(t, err)
	assert.Equal(t, "ana-ruiz", meta.Slug)

	assert.Equal(t, DefaultModel, got["model"])
	system, _ := got["system"].([]any)
	require.Len(t, system, 1)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	c := New("bad", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := c.NewGenerator().Generate(context.Background(), seojob.GenerationContext{Title: "x"})
	assert.True(t, errx.HasCode(err, metagen.CodeUnauthorized), "got %v", err)
}
