package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"gitlab.com/dirk.krummacker/contact-directory/internal/logger"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/health -interval=5s -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:8080/health", "the endpoint to poll")
	interval := flag.Duration("interval", 5*time.Second, "the pause between two attempts")
	timeout := flag.Duration("timeout", 0, "give up after this long, 0 waits forever")
	flag.Parse()

	log := logger.New("info", true)
	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if err := waitUntilAvailable(ctx, http.DefaultClient, *url, *interval, func(waited time.Duration, err error) {
		log.Info().Err(err).Dur("waited", waited).Msg("service not available yet")
	}); err != nil {
		log.Error().Err(err).Str("url", *url).Msg("service did not become available")
		os.Exit(1)
	}
	log.Info().Str("url", *url).Msg("service is available")
}

// errNotOK is reported to the progress callback for responses other than 200 OK.
type errNotOK struct {
	status string
}

func (e errNotOK) Error() string {
	return "unexpected status " + e.status
}

// waitUntilAvailable polls url until it answers with 200 OK or ctx is done.
func waitUntilAvailable(ctx context.Context, client *http.Client, url string, interval time.Duration, progress func(time.Duration, error)) error {
	start := time.Now()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		res, err := client.Do(req)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return nil
			}
			err = errNotOK{status: res.Status}
		}
		progress(time.Since(start), err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
