package ummalqura

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
)

// DefaultBaseURL points at the public Al Adhan API, which serves the
// Umm al-Qura calendar through calendarMethod=UAQ.
const DefaultBaseURL = "https://api.aladhan.com"

var ErrMalformedResponse = errors.New("malformed umm al-qura response")

// APIError is returned when the upstream answers with a non-success status.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("umm al-qura API error [%d] %s: %s", e.StatusCode, e.Status, e.Message)
}

// Client fetches authoritative Hijri dates. Each call is a single attempt
// bounded by the client timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gToHResponse struct {
	Code   int       `json:"code"`
	Status string    `json:"status"`
	Data   *gToHData `json:"data"`
}

type gToHData struct {
	Hijri hijriPayload `json:"hijri"`
}

type hijriPayload struct {
	Date  string `json:"date"` // e.g. "19-03-1446"
	Day   string `json:"day"`
	Month struct {
		Number int    `json:"number"`
		En     string `json:"en"`
		Ar     string `json:"ar"`
	} `json:"month"`
	Year string `json:"year"`
}

// HijriFor returns the Umm al-Qura date for the calendar day of t (in t's
// location).
func (c *Client) HijriFor(ctx context.Context, t time.Time) (hijri.Date, error) {
	endpoint := fmt.Sprintf("%s/v1/gToH/%s?calendarMethod=UAQ", c.baseURL, t.Format("02-01-2006"))

	var payload gToHResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return hijri.Date{}, err
	}
	if payload.Data == nil {
		return hijri.Date{}, ErrMalformedResponse
	}

	return payload.Data.Hijri.toDate()
}

// Ping checks that the upstream answers and reports the round-trip latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	_, err := c.HijriFor(ctx, start)
	return time.Since(start), err
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request umm al-qura: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read umm al-qura response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (p hijriPayload) toDate() (hijri.Date, error) {
	day, err := strconv.Atoi(strings.TrimSpace(p.Day))
	if err != nil {
		return hijri.Date{}, fmt.Errorf("%w: day %q", ErrMalformedResponse, p.Day)
	}
	year, err := strconv.Atoi(strings.TrimSpace(p.Year))
	if err != nil {
		return hijri.Date{}, fmt.Errorf("%w: year %q", ErrMalformedResponse, p.Year)
	}
	month := p.Month.Number
	if month < 1 || month > 12 || day < 1 || day > 30 {
		return hijri.Date{}, fmt.Errorf("%w: %d-%d-%d out of range", ErrMalformedResponse, year, month, day)
	}

	return hijri.Date{
		Day:       day,
		Month:     month,
		MonthName: hijri.ArabicMonthNames[month-1],
		Year:      year,
		RawYear:   year,
	}, nil
}
