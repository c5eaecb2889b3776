package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/log"
)

const posesEndpoint = "/v1/ingest/poses"

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// PoseSender implements ports.PoseSender by POSTing JSON batches.
type PoseSender struct {
	client ports.HTTPClient
	logger log.Logger
}

// NewPoseSender creates a new HTTP pose sender.
func NewPoseSender(client ports.HTTPClient, logger log.Logger) *PoseSender {
	return &PoseSender{
		client: client,
		logger: log.OrNoop(logger),
	}
}

// Send transmits a batch to {ServiceURL}/v1/ingest/poses.
func (s *PoseSender) Send(ctx context.Context, batch *domain.Batch, metadata ports.SendMetadata) error {
	if batch.Empty() {
		return nil
	}

	body, err := json.Marshal(batch.Payload(metadata.Device))
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	url := metadata.ServiceURL + posesEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	osArch := metadata.OSArch
	if osArch == "" {
		osArch = runtime.GOOS + "/" + runtime.GOARCH
	}
	if metadata.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+metadata.AuthKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent-Hostname", metadata.Hostname)
	req.Header.Set("X-Agent-OSArch", osArch)
	req.Header.Set("X-Headtrack-Driver", metadata.Driver)
	req.Header.Set("X-Headtrack-Device", strconv.Itoa(metadata.Device))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Debug("poses posted", log.String("url", url), log.Int("frames", batch.Size()))
	return nil
}
