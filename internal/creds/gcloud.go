package creds

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GcloudTokenSource refreshes the access token by shelling out to the
// gcloud CLI, the same token the user would paste into 'pdftran
// config --access-token'.
type GcloudTokenSource struct {
	binary string
}

func NewGcloudTokenSource() *GcloudTokenSource {
	return &GcloudTokenSource{binary: "gcloud"}
}

func (g *GcloudTokenSource) Token(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(g.binary); err != nil {
		return "", fmt.Errorf("gcloud not found; refresh the access token manually with 'pdftran config --access-token'")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary, "auth", "print-access-token")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("gcloud auth print-access-token: %s", msg)
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		return "", fmt.Errorf("gcloud returned an empty token")
	}
	return token, nil
}
