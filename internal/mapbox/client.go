package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evanhutnik/movesuggest-service/internal/common"
	t "github.com/evanhutnik/movesuggest-service/internal/types"
	"go.uber.org/zap"
)

const DefaultBaseUrl = "https://api.mapbox.com/search/searchbox/v1"

// Fixed request policy for the /suggest endpoint.
const (
	Language          = "en"
	NavigationProfile = "driving"
	Country           = "ke"
	Types             = "address,region,block,country,street,place,city,locality,district"
)

var ErrMissingAccessToken = errors.New("mapbox access token is missing")

type Outcome int

const (
	OutcomeResults Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResults:
		return "results"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Result is the uncollapsed outcome of one lookup. Err is set only for OutcomeFailed.
type Result struct {
	Suggestions []t.Suggestion
	Outcome     Outcome
	Err         error
}

type ClientOption func(*Client)

func AccessTokenOption(accessToken string) ClientOption {
	return func(c *Client) {
		c.accessToken = accessToken
	}
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func TimeoutOption(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func HTTPClientOption(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func LoggerOption(logger *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

type Client struct {
	accessToken string
	baseUrl     string
	timeout     time.Duration
	httpClient  *http.Client
	logger      *zap.SugaredLogger
}

func New(opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseUrl: DefaultBaseUrl,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	c.baseUrl = strings.TrimRight(c.baseUrl, "/")
	return c, nil
}

// RequestUrl builds the /suggest URL for q, including the access token.
func (c *Client) RequestUrl(q t.Query) (*url.URL, error) {
	req, err := url.Parse(fmt.Sprintf("%v/suggest", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapbox baseUrl %s: %w", c.baseUrl, err)
	}

	params := req.Query()
	params.Add("q", q.Text)
	params.Add("language", Language)
	params.Add("navigation_profile", NavigationProfile)
	params.Add("country", Country)
	params.Add("proximity", q.Proximity.String())
	params.Add("origin", q.Origin.String())
	params.Add("types", Types)
	params.Add("session_token", q.SessionToken)
	params.Add("access_token", c.accessToken)
	req.RawQuery = params.Encode()
	return req, nil
}

// Lookup performs one /suggest request and reports what happened without collapsing failures.
func (c *Client) Lookup(ctx context.Context, q t.Query) Result {
	reqUrl, err := c.RequestUrl(q)
	if err != nil {
		return failed(err)
	}

	ctxReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		return failed(fmt.Errorf("failed to build mapbox request: %w", err))
	}
	resp, err := common.Get(c.httpClient, ctxReq, "mapbox")
	if err != nil {
		return failed(redact(err, c.accessToken))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("error reading mapbox response body: %w", redact(err, c.accessToken)))
	}

	suggestions, err := Normalize(body)
	if err != nil {
		c.logger.Warnw(err.Error(), "action", "Suggest", "query", q.Text)
		return Result{Suggestions: []t.Suggestion{}, Outcome: OutcomeEmpty}
	}
	if len(suggestions) == 0 {
		return Result{Suggestions: suggestions, Outcome: OutcomeEmpty}
	}
	return Result{Suggestions: suggestions, Outcome: OutcomeResults}
}

// FetchSuggestions never fails: transport errors are logged and produce an empty list.
func (c *Client) FetchSuggestions(ctx context.Context, q t.Query) []t.Suggestion {
	res := c.Lookup(ctx, q)
	if res.Outcome == OutcomeFailed {
		c.logger.Errorw("Error fetching suggestions from Mapbox API",
			"action", "Suggest", "query", q.Text, "error", res.Err.Error())
	}
	return res.Suggestions
}

func failed(err error) Result {
	return Result{Suggestions: []t.Suggestion{}, Outcome: OutcomeFailed, Err: err}
}

// redact strips the access token from errors that embed the request URL.
func redact(err error, accessToken string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && accessToken != "" {
		msg := strings.ReplaceAll(err.Error(), accessToken, "REDACTED")
		return redactedError{msg: msg, err: err}
	}
	return err
}

type redactedError struct {
	msg string
	err error
}

func (e redactedError) Error() string { return e.msg }
func (e redactedError) Unwrap() error { return e.err }
