package ipfs_pinata

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/common/version"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/pkg/errors"
	"github.com/rubyist/circuitbreaker"
)

// Longest error body kept on a TransportError.
const maxErrorBody = 512

type request struct {
	operation   string
	method      string
	url         string
	contentType string
	// body is opened only once the breaker lets the request through
	body func() io.ReadCloser
	// authenticated requests carry the credential headers; gateway reads do not
	authenticated bool
}

type response struct {
	statusCode  int
	contentType string
	body        []byte
}

// do sends r through the breaker, recording request and failure metrics.
func (c *Client) do(ctx rcontext.RequestContext, r request) (*response, error) {
	ctx.Log.Debugf("Calling %s %s", r.method, r.url)
	metrics.PinataRequests.WithLabelValues(r.operation).Inc()
	started := time.Now()
	defer func() {
		metrics.PinataResponseTime.WithLabelValues(r.operation).Observe(time.Since(started).Seconds())
	}()

	var res *response
	var replyErr error
	err := callBreaker(ctx, c.breakerFor(r), func() error {
		var breakerErr error
		res, replyErr = c.send(ctx, r)
		breakerErr, replyErr = filterError(replyErr)
		return breakerErr
	})
	if err == nil {
		err = replyErr
	}
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			// the breaker refused the call, or building the request failed
			te = &TransportError{Operation: r.operation, Url: r.url, Err: err}
			if err != circuit.ErrBreakerOpen {
				te.Err = errors.Wrap(err, "preparing request")
			}
			err = te
		}
		metrics.PinataFailures.WithLabelValues(r.operation, strconv.Itoa(te.StatusCode)).Inc()
		return nil, err
	}
	return res, nil
}

func (c *Client) send(ctx rcontext.RequestContext, r request) (*response, error) {
	var body io.ReadCloser
	if r.body != nil {
		body = r.body()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.authenticated {
		c.setAuthHeaders(req)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Operation: r.operation, Url: r.url, Err: err}
	}
	defer res.Body.Close()

	contents, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Operation: r.operation, Url: r.url, StatusCode: res.StatusCode, Err: errors.Wrap(err, "reading response")}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		te := &TransportError{
			Operation:  r.operation,
			Url:        r.url,
			StatusCode: res.StatusCode,
			Body:       truncate(string(contents), maxErrorBody),
		}
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			te.Err = ErrAuthenticationFailed
		}
		return nil, te
	}

	return &response{
		statusCode:  res.StatusCode,
		contentType: res.Header.Get("Content-Type"),
		body:        contents,
	}, nil
}

func (c *Client) doJSON(ctx rcontext.RequestContext, r request, result interface{}) error {
	res, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err = json.Unmarshal(res.body, result); err != nil {
		return &TransportError{
			Operation:  r.operation,
			Url:        r.url,
			StatusCode: res.statusCode,
			Body:       truncate(string(res.body), maxErrorBody),
			Err:        errors.Wrap(err, "decoding response"),
		}
	}
	return nil
}

func bytesBody(b []byte) func() io.ReadCloser {
	return func() io.ReadCloser {
		return io.NopCloser(bytes.NewReader(b))
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
