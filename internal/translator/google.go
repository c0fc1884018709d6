package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valpere/pdftran/internal/creds"
)

const defaultEndpoint = "https://translation.googleapis.com/language/translate/v2"

// GoogleREST talks to the Translate v2 REST endpoint directly. Each
// request carries the API key in the body and the OAuth access token
// and billing project in headers.
type GoogleREST struct {
	endpoint string
	client   *http.Client
}

func NewGoogleREST() *GoogleREST {
	return &GoogleREST{
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewGoogleRESTWithEndpoint overrides the API endpoint. Used by tests.
func NewGoogleRESTWithEndpoint(endpoint string, client *http.Client) *GoogleREST {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoogleREST{endpoint: endpoint, client: client}
}

func (s *GoogleREST) Name() string {
	return "google"
}

func (s *GoogleREST) Translate(ctx context.Context, text, sourceLang, targetLang string, cr creds.Credentials) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": sourceLang,
		"target": targetLang,
		"format": "text",
		"key":    cr.APIKey,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: KindPermanent, Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Kind: KindPermanent, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	if cr.AccessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cr.AccessToken)
	}
	if cr.ProjectID != "" {
		httpReq.Header.Set("x-goog-user-project", cr.ProjectID)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &Error{Kind: KindTransient, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransient, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyResponse(resp.StatusCode, body)
	}

	var apiResp struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &Error{Kind: KindTransient, Status: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	if len(apiResp.Data.Translations) == 0 {
		return "", &Error{Kind: KindTransient, Status: resp.StatusCode, Message: "empty translation response"}
	}

	return apiResp.Data.Translations[0].TranslatedText, nil
}

// classifyResponse builds a classified Error from a non-200 response.
func classifyResponse(status int, body []byte) *Error {
	var apiErr struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}

	reason := ""
	message := string(body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != 0 {
		message = apiErr.Error.Message
		if len(apiErr.Error.Errors) > 0 {
			reason = apiErr.Error.Errors[0].Reason
		}
	}

	return &Error{
		Kind:    classifyStatus(status, reason),
		Status:  status,
		Message: message,
	}
}
