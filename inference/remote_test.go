package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookscraper/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncoding() tokenizer.Encoding {
	return tokenizer.Encoding{
		IDs:           []int{2, 7, 3},
		Tokens:        []string{tokenizer.ClsToken, "mug", tokenizer.SepToken},
		TypeIDs:       []int{0, 0, 0},
		AttentionMask: []int{1, 1, 1},
	}
}

func newInferServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteModel_Logits(t *testing.T) {
	var got inferRequest
	srv := newInferServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/models/bert/infer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(inferResponse{
			ModelName: "bert",
			Outputs: []outputTensor{{
				Name:     "logits",
				Shape:    []int{1, 3, 2},
				Datatype: "FP32",
				Data:     []float32{0.1, 0.9, 0.8, 0.2, 0.5, 0.5},
			}},
		})
	})

	model := NewRemoteModel(srv.URL, "bert", time.Second)
	logits, err := model.Logits(context.Background(), testEncoding())
	require.NoError(t, err)

	require.Len(t, got.Inputs, 3)
	assert.Equal(t, "input_ids", got.Inputs[0].Name)
	assert.Equal(t, []int{1, 3}, got.Inputs[0].Shape)
	assert.Equal(t, "INT64", got.Inputs[0].Datatype)
	assert.Equal(t, []int{2, 7, 3}, got.Inputs[0].Data)
	assert.Equal(t, "attention_mask", got.Inputs[1].Name)
	assert.Equal(t, "token_type_ids", got.Inputs[2].Name)
	assert.Equal(t, []requestedOutput{{Name: "logits"}}, got.Outputs)

	assert.Equal(t, 3, logits.SeqLen)
	assert.Equal(t, 2, logits.VocabSize)
	assert.Equal(t, []int{1, 0, 0}, Argmax(logits))
}

func TestRemoteModel_LogitsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errText string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model crashed", http.StatusInternalServerError)
			},
			errText: "status 500",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			errText: "decode",
		},
		{
			name: "missing logits output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(inferResponse{Outputs: []outputTensor{{Name: "pooler"}}})
			},
			errText: "no logits output",
		},
		{
			name: "sequence length mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(inferResponse{Outputs: []outputTensor{{
					Name: "logits", Shape: []int{1, 2, 2}, Data: []float32{1, 2, 3, 4},
				}}})
			},
			errText: "unexpected logits shape",
		},
		{
			name: "short data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(inferResponse{Outputs: []outputTensor{{
					Name: "logits", Shape: []int{1, 3, 2}, Data: []float32{1, 2, 3},
				}}})
			},
			errText: "needs 6 values",
		},
		{
			name: "wrong datatype",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(inferResponse{Outputs: []outputTensor{{
					Name: "logits", Shape: []int{1, 3, 2}, Datatype: "BYTES",
				}}})
			},
			errText: "datatype",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newInferServer(t, tt.handler)
			model := NewRemoteModel(srv.URL, "bert", time.Second)

			_, err := model.Logits(context.Background(), testEncoding())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrModelUnavailable)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestRemoteModel_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	model := NewRemoteModel(url, "bert", time.Second)
	_, err := model.Logits(context.Background(), testEncoding())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestRemoteModel_ContextErrorsKeepTheirChain(t *testing.T) {
	srv := newInferServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	model := NewRemoteModel(srv.URL, "bert", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := model.Logits(ctx, testEncoding())
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	err = model.Ready(canceled)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteModel_ErrorBodyTruncated(t *testing.T) {
	srv := newInferServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	})

	model := NewRemoteModel(srv.URL, "bert", time.Second)
	_, err := model.Logits(context.Background(), testEncoding())
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
}

func TestRemoteModel_Ready(t *testing.T) {
	ready := true
	srv := newInferServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/models/bert/ready", r.URL.Path)
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	model := NewRemoteModel(srv.URL, "bert", time.Second)
	require.NoError(t, model.Ready(context.Background()))

	ready = false
	err := model.Ready(context.Background())
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "status 503")
}

func TestArgmax(t *testing.T) {
	logits, err := NewLogits(3, 3, []float32{
		0, 5, 1,
		2, 2, 1, // tie picks the lower id
		-3, -2, -1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, Argmax(logits))

	empty, err := NewLogits(0, 4, nil)
	require.NoError(t, err)
	assert.Empty(t, Argmax(empty))

	_, err = NewLogits(2, 0, nil)
	assert.Error(t, err)
}
