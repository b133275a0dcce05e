package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookscraper/tokenizer"

	"github.com/go-resty/resty/v2"
)

const (
	logitsOutput   = "logits"
	maxErrorBody   = 512
	datatypeInt64  = "INT64"
	datatypeFloat  = "FP32"
	contentTypeKey = "Content-Type"
)

type tensor struct {
	Name     string `json:"name"`
	Shape    []int  `json:"shape"`
	Datatype string `json:"datatype"`
	Data     []int  `json:"data"`
}

type requestedOutput struct {
	Name string `json:"name"`
}

type inferRequest struct {
	Inputs  []tensor          `json:"inputs"`
	Outputs []requestedOutput `json:"outputs"`
}

type outputTensor struct {
	Name     string    `json:"name"`
	Shape    []int     `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferResponse struct {
	ModelName string         `json:"model_name"`
	Outputs   []outputTensor `json:"outputs"`
}

// RemoteModel calls a model served over the Open Inference Protocol
type RemoteModel struct {
	client *resty.Client
	name   string
}

// NewRemoteModel creates a client for model name served at baseURL.
// A zero timeout leaves requests bounded only by their context.
func NewRemoteModel(baseURL, name string, timeout time.Duration) *RemoteModel {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader(contentTypeKey, "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &RemoteModel{
		client: client,
		name:   name,
	}
}

// Ready reports whether the server has the model loaded
func (m *RemoteModel) Ready(ctx context.Context) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetPathParam("model", m.name).
		Get("/v2/models/{model}/ready")
	if err != nil {
		return fmt.Errorf("%w: readiness check failed: %w", ErrModelUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: model %s not ready: status %d: %s", ErrModelUnavailable, m.name, resp.StatusCode(), truncate(resp.String()))
	}
	return nil
}

// Logits implements the Model interface
func (m *RemoteModel) Logits(ctx context.Context, enc tokenizer.Encoding) (*Logits, error) {
	n := enc.Len()
	shape := []int{1, n}
	body := inferRequest{
		Inputs: []tensor{
			{Name: "input_ids", Shape: shape, Datatype: datatypeInt64, Data: enc.IDs},
			{Name: "attention_mask", Shape: shape, Datatype: datatypeInt64, Data: enc.AttentionMask},
			{Name: "token_type_ids", Shape: shape, Datatype: datatypeInt64, Data: enc.TypeIDs},
		},
		Outputs: []requestedOutput{{Name: logitsOutput}},
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetPathParam("model", m.name).
		SetBody(body).
		Post("/v2/models/{model}/infer")
	if err != nil {
		return nil, fmt.Errorf("%w: inference request failed: %w", ErrModelUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: inference failed: status %d: %s", ErrModelUnavailable, resp.StatusCode(), truncate(resp.String()))
	}

	var parsed inferResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode inference response: %w", ErrModelUnavailable, err)
	}

	return logitsFromResponse(parsed, n)
}

// logitsFromResponse picks the logits tensor and checks it is [1, n, V]
func logitsFromResponse(resp inferResponse, n int) (*Logits, error) {
	for _, out := range resp.Outputs {
		if out.Name != logitsOutput {
			continue
		}
		if out.Datatype != "" && out.Datatype != datatypeFloat {
			return nil, fmt.Errorf("%w: unexpected logits datatype %s", ErrModelUnavailable, out.Datatype)
		}
		if len(out.Shape) != 3 || out.Shape[0] != 1 || out.Shape[1] != n {
			return nil, fmt.Errorf("%w: unexpected logits shape %v for %d tokens", ErrModelUnavailable, out.Shape, n)
		}
		logits, err := NewLogits(out.Shape[1], out.Shape[2], out.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		return logits, nil
	}
	return nil, fmt.Errorf("%w: response has no %s output", ErrModelUnavailable, logitsOutput)
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
