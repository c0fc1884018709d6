package translator

import (
	"context"
	"errors"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/valpere/pdftran/internal/creds"
)

// GoogleSDK uses the official Cloud Translation client instead of the
// raw REST endpoint. Selected with --service google-sdk.
type GoogleSDK struct{}

func NewGoogleSDK() *GoogleSDK {
	return &GoogleSDK{}
}

func (s *GoogleSDK) Name() string {
	return "google-sdk"
}

func (s *GoogleSDK) Translate(ctx context.Context, text, sourceLang, targetLang string, cr creds.Credentials) (string, error) {
	targetTag, err := language.Parse(targetLang)
	if err != nil {
		return "", &Error{Kind: KindPermanent, Message: fmt.Sprintf("invalid target language %q: %v", targetLang, err)}
	}

	var opts []option.ClientOption
	switch {
	case cr.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cr.AccessToken})
		opts = append(opts, option.WithTokenSource(ts))
	case cr.APIKey != "":
		opts = append(opts, option.WithAPIKey(cr.APIKey))
	}
	if cr.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cr.ProjectID))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", &Error{Kind: KindAuth, Message: fmt.Sprintf("failed to create client: %v", err)}
	}
	defer client.Close()

	var translateOpts *translate.Options
	if sourceLang != "" && sourceLang != "auto" {
		sourceTag, parseErr := language.Parse(sourceLang)
		if parseErr != nil {
			return "", &Error{Kind: KindPermanent, Message: fmt.Sprintf("invalid source language %q: %v", sourceLang, parseErr)}
		}
		translateOpts = &translate.Options{Source: sourceTag, Format: translate.Text}
	} else {
		translateOpts = &translate.Options{Format: translate.Text}
	}

	translations, err := client.Translate(ctx, []string{text}, targetTag, translateOpts)
	if err != nil {
		return "", classifySDKError(err)
	}

	if len(translations) == 0 {
		return "", &Error{Kind: KindTransient, Message: "no translation returned"}
	}

	return translations[0].Text, nil
}

// classifySDKError maps a googleapi error onto the taxonomy; anything
// without an HTTP code is treated as a network-level failure.
func classifySDKError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 {
			reason = gerr.Errors[0].Reason
		}
		return &Error{
			Kind:    classifyStatus(gerr.Code, reason),
			Status:  gerr.Code,
			Message: gerr.Message,
		}
	}
	return &Error{Kind: KindTransient, Message: fmt.Sprintf("translation failed: %v", err)}
}
