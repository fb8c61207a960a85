package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/pkg/config"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
	"github.com/pierojauregui/trilceperu-sub000/pkg/middleware/requestid"
)

const maxResponseBytes = 4 << 20

// UpstreamObserver records one call to the assignment service.
type UpstreamObserver interface {
	ObserveUpstreamCall(endpoint string, status int, duration time.Duration)
}

// Client talks to the assignment service over HTTP. It keeps no state
// between calls: every request carries the caller's bearer token.
type Client struct {
	baseURL             string
	coursesPath         string
	coursesServerFilter bool
	http                *http.Client
	metrics             UpstreamObserver
	logger              *zap.Logger
	now                 func() time.Time
}

// New builds a client for cfg. httpClient may be nil.
func New(cfg config.UpstreamConfig, httpClient *http.Client, metrics UpstreamObserver, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	coursesPath := cfg.CoursesPath
	if coursesPath == "" {
		coursesPath = "/cursos"
	}
	return &Client{
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		coursesPath:         coursesPath,
		coursesServerFilter: cfg.CoursesServerFilter,
		http:                httpClient,
		metrics:             metrics,
		logger:              logger,
		now:                 time.Now,
	}
}

// CoursesServerFilter reports whether the courses endpoint filters by
// category itself.
func (c *Client) CoursesServerFilter() bool {
	return c.coursesServerFilter
}

// CheckToken fails before any network call when the token is missing or,
// for JWTs, already expired. Signatures are verified by the service.
func CheckToken(token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "sesion no iniciada: falta el token de acceso")
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(now) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "la sesion expiro, vuelva a iniciar sesion")
	}
	return nil
}

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     interface{}
}

func (c *Client) do(ctx context.Context, token string, r request, out interface{}) error {
	if err := CheckToken(token, c.now()); err != nil {
		return err
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(r.endpoint, 0, time.Since(start))
		c.logger.Warn("assignment service unreachable", zap.String("endpoint", r.endpoint), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(r.endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "failed to read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected response from assignment service")
	}
	return nil
}

// decodeError maps a failed response onto the error taxonomy: auth,
// not-found, server validation (4xx) and upstream failure (5xx).
func decodeError(status int, raw []byte) error {
	var body dto.ErrorBody
	_ = json.Unmarshal(raw, &body)

	text := body.Text()
	if text == "" {
		text = http.StatusText(status)
	}

	var appErr *appErrors.Error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = appErrors.Clone(appErrors.ErrUnauthorized, text)
	case status == http.StatusNotFound:
		appErr = appErrors.Clone(appErrors.ErrNotFound, text)
	case status < http.StatusInternalServerError:
		appErr = appErrors.WithDetails(appErrors.Clone(appErrors.ErrServerValidation, text), body.FieldErrors())
	default:
		appErr = appErrors.Clone(appErrors.ErrUpstream, text)
	}
	appErr.Status = status
	if code := body.ErrorCode(); code != "" {
		appErr.Err = fmt.Errorf("assignment service responded %d (%s)", status, code)
	} else {
		appErr.Err = fmt.Errorf("assignment service responded %d", status)
	}
	return appErr
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(endpoint, status, d)
	}
}

// decodeList maps the items of a list envelope through conv.
func decodeList[T any, M any](env dto.ListEnvelope, conv func(T) M) ([]M, error) {
	items := env.Items()
	if items == nil {
		return []M{}, nil
	}
	var raw []T
	if err := json.Unmarshal(items, &raw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected list shape from assignment service")
	}
	out := make([]M, 0, len(raw))
	for _, item := range raw {
		out = append(out, conv(item))
	}
	return out, nil
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return errors.Is(err, appErrors.ErrUnauthorized)
}
