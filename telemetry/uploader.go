package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/gogpu/pace"
)

// UploaderOptions configures an Uploader.
type UploaderOptions struct {
	// Endpoint is the URL reports are POSTed to. Required.
	Endpoint string

	// Interval between upload attempts. Default 60s.
	Interval time.Duration

	// Attempts is the number of tries per report, including the first.
	// Default 3.
	Attempts uint

	// Client is the HTTP client used for uploads. Defaults to a client
	// with a 10s timeout.
	Client *http.Client
}

// Uploader periodically serializes a session and POSTs it to a
// collection endpoint.
//
// Uploads happen on their own goroutine and never block the render
// loop. Each report is retried a bounded number of times with backoff;
// after the final failure the report is dropped and the session keeps
// accumulating into the next interval.
type Uploader struct {
	session  *Session
	endpoint string
	interval time.Duration
	attempts uint
	client   *http.Client

	done chan struct{}
}

// NewUploader creates an uploader for session.
func NewUploader(session *Session, opts UploaderOptions) (*Uploader, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("telemetry: uploader endpoint is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Uploader{
		session:  session,
		endpoint: opts.Endpoint,
		interval: opts.Interval,
		attempts: opts.Attempts,
		client:   opts.Client,
		done:     make(chan struct{}),
	}, nil
}

// Run uploads the session every interval until ctx is cancelled. A
// final flush is attempted on the way out. Run returns after the last
// upload attempt finishes.
func (u *Uploader) Run(ctx context.Context) {
	defer close(u.done)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.flush(context.Background())
			return
		case <-ticker.C:
			u.flush(ctx)
		}
	}
}

// Done is closed when Run has returned.
func (u *Uploader) Done() <-chan struct{} { return u.done }

// flush uploads the current session data if there is any, and clears it
// on success.
func (u *Uploader) flush(ctx context.Context) {
	if !u.session.NonEmpty() {
		return
	}

	body, err := BuildReport(u.session).Encode()
	if err != nil {
		pace.Logger().Warn("telemetry: encoding report failed", "error", err)
		return
	}

	err = retry.Do(
		func() error { return u.post(ctx, body) },
		retry.Attempts(u.attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		// Dropped, not queued: the next interval's report supersedes it.
		pace.Logger().Warn("telemetry: upload failed, report dropped",
			"endpoint", u.endpoint, "error", err)
		return
	}

	u.session.ClearData()
	pace.Logger().Debug("telemetry: report uploaded", "bytes", len(body))
}

func (u *Uploader) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telemetry: endpoint returned %s", resp.Status)
	}
	return nil
}
