package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// PageSize is the fixed page size of the tracker's task listing. A page
	// shorter than this terminates pagination.
	PageSize = 100

	// lowWaterMark: when the remaining quota drops to this or below, wait for
	// the reset instead of burning the last requests.
	lowWaterMark = 5

	maxRateLimitRetries = 5
	defaultRetryAfter   = 60 * time.Second
)

var (
	ErrInvalidCredential  = errors.New("tracker: missing or malformed API token")
	ErrRateLimitExhausted = errors.New("tracker: rate limit retries exhausted")
)

// APIError is any non-2xx, non-429 response. It propagates to the caller
// unmodified; the client never swallows HTTP errors.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// CallAuditor receives one record per completed or failed API call.
type CallAuditor interface {
	RecordCall(workspaceID, endpoint, method string, statusCode int, duration time.Duration, rateRemaining int)
}

// Client is a single-workspace HTTP client for the tracker API. Quota state
// is private to the instance: one client serves one sync run and its counters
// are neither shared nor persisted.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	workspaceID string
	auditor     CallAuditor

	rateRemaining int // -1 until the first response carries quota headers
	rateResetAt   time.Time

	// Overridable in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient fails fast on an unusable token so a bad credential surfaces
// before any sync work starts.
func NewClient(baseURL, token, workspaceID string, auditor CallAuditor) (*Client, error) {
	if strings.TrimSpace(token) == "" || strings.ContainsAny(token, " \t\r\n") {
		return nil, ErrInvalidCredential
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		workspaceID:   workspaceID,
		auditor:       auditor,
		rateRemaining: -1,
		now:           time.Now,
		sleep:         sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitForQuota suspends until the quota window resets when the remaining
// budget is at or below the low-water mark.
func (c *Client) waitForQuota(ctx context.Context) error {
	if c.rateRemaining < 0 || c.rateRemaining > lowWaterMark {
		return nil
	}
	wait := c.rateResetAt.Sub(c.now())
	if wait <= 0 {
		return nil
	}
	return c.sleep(ctx, wait)
}

// doOnce issues a single request, refreshes quota state from response
// headers, and records the call with the auditor.
func (c *Client) doOnce(ctx context.Context, endpoint string, query url.Values) (int, []byte, http.Header, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	duration := c.now().Sub(start)
	if err != nil {
		c.audit(endpoint, 0, duration)
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.audit(endpoint, resp.StatusCode, duration)
		return 0, nil, nil, err
	}

	c.updateQuota(resp.Header)
	c.audit(endpoint, resp.StatusCode, duration)
	return resp.StatusCode, body, resp.Header, nil
}

func (c *Client) updateQuota(h http.Header) {
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateRemaining = n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.rateResetAt = time.Unix(sec, 0)
		}
	}
}

// audit logs the call keyed by workspace, but only for real workspace ids.
// Credential-validation calls use a sentinel placeholder and are skipped.
func (c *Client) audit(endpoint string, statusCode int, duration time.Duration) {
	if c.auditor == nil {
		return
	}
	if _, err := uuid.Parse(c.workspaceID); err != nil {
		return
	}
	c.auditor.RecordCall(c.workspaceID, endpoint, http.MethodGet, statusCode, duration, c.rateRemaining)
}

// get runs one logical request: quota gate, the call itself, and a bounded
// wait-and-retry loop on 429 responses.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	for attempt := 0; ; attempt++ {
		if err := c.waitForQuota(ctx); err != nil {
			return err
		}

		status, body, header, err := c.doOnce(ctx, endpoint, query)
		if err != nil {
			return err
		}

		if status == http.StatusTooManyRequests {
			if attempt >= maxRateLimitRetries {
				return ErrRateLimitExhausted
			}
			wait := defaultRetryAfter
			if v := header.Get("Retry-After"); v != "" {
				if sec, perr := strconv.ParseInt(v, 10, 64); perr == nil && sec >= 0 {
					wait = time.Duration(sec) * time.Second
				}
			}
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if status < 200 || status >= 300 {
			return &APIError{StatusCode: status, Endpoint: endpoint, Body: strings.TrimSpace(string(body))}
		}

		if out == nil {
			return nil
		}
		return json.Unmarshal(body, out)
	}
}

// GetAuthorizedTeams lists the teams the token can see. Used to validate a
// credential when connecting a workspace.
func (c *Client) GetAuthorizedTeams(ctx context.Context) ([]Team, error) {
	var resp teamsResponse
	if err := c.get(ctx, "/team", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

func (c *Client) GetSpaces(ctx context.Context, teamID string) ([]Space, error) {
	q := url.Values{"archived": {"false"}}
	var resp spacesResponse
	if err := c.get(ctx, "/team/"+teamID+"/space", q, &resp); err != nil {
		return nil, err
	}
	return resp.Spaces, nil
}

func (c *Client) GetFolders(ctx context.Context, spaceID string) ([]Folder, error) {
	var resp foldersResponse
	if err := c.get(ctx, "/space/"+spaceID+"/folder", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// GetFolderlessLists returns the lists attached directly to a space.
func (c *Client) GetFolderlessLists(ctx context.Context, spaceID string) ([]List, error) {
	var resp listsResponse
	if err := c.get(ctx, "/space/"+spaceID+"/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

func (c *Client) GetFolderLists(ctx context.Context, folderID string) ([]List, error) {
	var resp listsResponse
	if err := c.get(ctx, "/folder/"+folderID+"/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

func (c *Client) GetList(ctx context.Context, listID string) (*List, error) {
	var list List
	if err := c.get(ctx, "/list/"+listID, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetTasksPage fetches one page of tasks for a list. lastPage is true when
// the page came back short: a full page always means one more request.
func (c *Client) GetTasksPage(ctx context.Context, listID string, page int) (tasks []Task, lastPage bool, err error) {
	q := url.Values{
		"page":           {strconv.Itoa(page)},
		"subtasks":       {"true"},
		"include_closed": {"true"},
	}
	var resp tasksResponse
	if err := c.get(ctx, "/list/"+listID+"/task", q, &resp); err != nil {
		return nil, false, err
	}
	return resp.Tasks, len(resp.Tasks) < PageSize, nil
}
