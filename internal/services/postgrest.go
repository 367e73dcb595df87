// PostgREST (Supabase REST) implementation of [Connector] and [Loader]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
)

const (
	restPath     = "/rest/v1/"
	defaultTable = "courses"
)

// remoteCourse is a row as returned by PostgREST. Timestamps arrive with or without an offset depending on the
// column type, so they are parsed by hand.
type remoteCourse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Instructor  string  `json:"instructor"`
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory"`
	CourseURL   string  `json:"course_url"`
	Status      *string `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// restError is the PostgREST error body.
type restError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

type statusPatch struct {
	Status    models.Status `json:"status"`
	UpdatedAt string        `json:"updated_at"`
}

// PostgRESTConnector talks to a Supabase project through its REST interface.
type PostgRESTConnector struct {
	baseURL    string
	key        string
	table      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewPostgRESTConnector creates a connector for cfg.
//
// Requests carry the key as both the apikey header and a bearer token. A nil client uses
// [http.DefaultTransport] with no client timeout; bounds are applied per call by [WithTimeout].
func NewPostgRESTConnector(cfg shared.RemoteConfig, client *http.Client) *PostgRESTConnector {
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}

	var base http.RoundTripper = http.DefaultTransport
	var timeout time.Duration
	if client != nil {
		if client.Transport != nil {
			base = client.Transport
		}
		timeout = client.Timeout
	}

	return &PostgRESTConnector{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
		table:   table,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Key, TokenType: "Bearer"}),
				Base:   &apiKeyTransport{key: cfg.Key, base: base},
			},
		},
		logger: log.New(io.Discard),
	}
}

// SetLogger sets the logger for row level warnings.
func (p *PostgRESTConnector) SetLogger(logger *log.Logger) {
	p.logger = logger
}

// apiKeyTransport sets the apikey header Supabase requires next to the bearer token.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r)
}

func (p *PostgRESTConnector) Name() string { return shared.DriverPostgREST }

// Configured reports whether neither the url nor the key is a template value.
func (p *PostgRESTConnector) Configured() bool {
	return !shared.IsPlaceholder(p.baseURL) && !shared.IsPlaceholder(p.key)
}

// FetchCourses reads the whole table ordered by category, then title.
func (p *PostgRESTConnector) FetchCourses(ctx context.Context) ([]models.Course, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "category.asc,title.asc")

	var rows []remoteCourse
	if _, err := p.doRequest(ctx, "select", http.MethodGet, q, nil, nil, &rows); err != nil {
		return nil, err
	}

	return p.toCourses(rows), nil
}

// UpdateStatus patches status and updated_at of the row with id.
func (p *PostgRESTConnector) UpdateStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	if _, err := status.MarshalText(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))

	body := statusPatch{Status: status, UpdatedAt: at.UTC().Format(time.RFC3339Nano)}
	headers := map[string]string{"Prefer": "return=minimal"}
	_, err := p.doRequest(ctx, "update", http.MethodPatch, q, headers, body, nil)
	return err
}

// InsertCourses inserts one batch and returns the stored rows.
func (p *PostgRESTConnector) InsertCourses(ctx context.Context, courses []models.CourseInput) ([]models.Course, error) {
	for i, in := range courses {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	var rows []remoteCourse
	headers := map[string]string{"Prefer": "return=representation"}
	if _, err := p.doRequest(ctx, "insert", http.MethodPost, nil, headers, courses, &rows); err != nil {
		return nil, err
	}

	return p.toCourses(rows), nil
}

// CountCourses reads the exact row count from the Content-Range header.
func (p *PostgRESTConnector) CountCourses(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")

	headers := map[string]string{"Prefer": "count=exact"}
	resp, err := p.doRequest(ctx, "count", http.MethodGet, q, headers, nil, nil)
	if err != nil {
		return 0, err
	}

	return parseContentRange(resp.Header.Get("Content-Range"))
}

// doRequest sends one request to the table endpoint and decodes a JSON result when result is non-nil.
//
// Non-2xx responses become a [QueryError] carrying the PostgREST message.
func (p *PostgRESTConnector) doRequest(ctx context.Context, op, method string, query url.Values, headers map[string]string, body, result any) (*http.Response, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotConfigured, p.Name())
	}

	endpoint := p.baseURL + restPath + url.PathEscape(p.table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, queryError(op, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}

func queryError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	qe := &QueryError{Op: op, StatusCode: resp.StatusCode}
	var body restError
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		qe.Code = body.Code
		qe.Message = body.Message
		if body.Details != "" {
			qe.Message += ": " + body.Details
		}
	} else {
		qe.Message = strings.TrimSpace(string(data))
		if qe.Message == "" {
			qe.Message = http.StatusText(resp.StatusCode)
		}
	}
	return qe
}

// toCourses converts rows, reading an unknown status as unchecked.
func (p *PostgRESTConnector) toCourses(rows []remoteCourse) []models.Course {
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		c, ok := row.toCourse()
		if !ok {
			p.logger.Warn("unknown course status, reading as unchecked", "course", row.ID, "status", *row.Status)
		}
		courses = append(courses, c)
	}
	return courses
}

// toCourse reports false when the status column held unknown text.
func (r remoteCourse) toCourse() (models.Course, bool) {
	raw := ""
	if r.Status != nil {
		raw = *r.Status
	}
	status, ok := models.StatusOrUnchecked(raw)

	return models.Course{
		ID:          r.ID,
		Title:       r.Title,
		Instructor:  r.Instructor,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		CourseURL:   r.CourseURL,
		Status:      status,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}, ok
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts timestamptz and timestamp renderings. Unparseable values become the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseContentRange reads the total from "0-0/42" or "*/0".
func parseContentRange(v string) (int, error) {
	i := strings.LastIndex(v, "/")
	if i < 0 || i == len(v)-1 {
		return 0, fmt.Errorf("%w: missing count in Content-Range %q", shared.ErrQueryFailed, v)
	}
	total := v[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("%w: count not returned in Content-Range %q", shared.ErrQueryFailed, v)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid Content-Range %q", shared.ErrQueryFailed, v)
	}
	return n, nil
}
