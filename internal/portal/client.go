// Package portal talks to the presence portal rpc endpoints using a cookie
// captured by the login step.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrAuthExpired reports that the portal rejected the session cookie. The
// portal answers expired sessions with either an error status or an HTML
// login page where JSON was expected, so both decode failures and non-2xx
// statuses map here.
var ErrAuthExpired = errors.New("portal session expired: log in again before retrying")

// Fetcher is the remote surface consumed by the cache engine and the polling
// loop. Implemented by *Client.
type Fetcher interface {
	FetchTimesheet(ctx context.Context, employeeID, start, end string) (*TimesheetResponse, error)
	FetchDirectory(ctx context.Context, employeeID string) ([]DirectoryEntry, error)
}

var _ Fetcher = (*Client)(nil)

const (
	requestTimeout   = 30 * time.Second
	defaultUserAgent = "stopweb/1.1"
)

// Endpoints carries the three rpc endpoint URLs.
type Endpoints struct {
	Timesheet string
	Directory string
	Favorites string
}

// Client performs cookie-authenticated JSON calls against the portal.
type Client struct {
	endpoints Endpoints
	cookie    string
	http      *http.Client
	log       *zap.Logger
}

// NewClient builds a Client. The logger records one line per request (the
// requests log of the profile); pass zap.NewNop() to disable.
func NewClient(endpoints Endpoints, cookieHeader string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoints: endpoints,
		cookie:    cookieHeader,
		http:      &http.Client{Timeout: requestTimeout},
		log:       log,
	}
}

// FetchTimesheet retrieves the raw cartellino rows for [start, end].
func (c *Client) FetchTimesheet(ctx context.Context, employeeID, start, end string) (*TimesheetResponse, error) {
	u, err := url.Parse(c.endpoints.Timesheet)
	if err != nil {
		return nil, fmt.Errorf("parse timesheet url: %w", err)
	}
	q := u.Query()
	q.Set("PageMethod", "ConsultaCartellino")
	q.Set("iddip", employeeID)
	u.RawQuery = q.Encode()

	payload := timesheetRequest{
		Start:     start + "000000",
		End:       end + "000000",
		Employees: []string{},
		Ordering:  "C",
	}

	c.log.Info("request", zap.String("url", u.String()), zap.String("start", start), zap.String("end", end))

	var resp TimesheetResponse
	if err := c.do(ctx, http.MethodPost, u.String(), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sentinel employee ids understood by LeggiRubrica.
const (
	DirectoryAll       = "-1"
	DirectoryFavorites = "-2"
)

// FetchDirectory retrieves rubrica entries. employeeID "-1" returns the whole
// directory, "-2" the favorites set.
func (c *Client) FetchDirectory(ctx context.Context, employeeID string) ([]DirectoryEntry, error) {
	u, err := c.pageMethodURL(c.endpoints.Directory, "LeggiRubrica", map[string]string{"iddip": employeeID})
	if err != nil {
		return nil, err
	}
	var entries []DirectoryEntry
	if err := c.do(ctx, http.MethodGet, u, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchEmployeeList retrieves the full employee list.
func (c *Client) FetchEmployeeList(ctx context.Context) ([]EmployeeListEntry, error) {
	u, err := c.pageMethodURL(c.endpoints.Directory, "ElencoSottopostiSelectVisibiltàEstesa", map[string]string{
		"pattern":   "",
		"page":      "1",
		"pageLimit": "2000",
	})
	if err != nil {
		return nil, err
	}
	var entries []EmployeeListEntry
	if err := c.do(ctx, http.MethodGet, u, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchFavorites retrieves the favorites set together with the full
// employee choice list.
func (c *Client) FetchFavorites(ctx context.Context) (*FavoritesResponse, error) {
	u, err := c.pageMethodURL(c.endpoints.Favorites, "ReadDipendentiRubricaPreferiti", nil)
	if err != nil {
		return nil, err
	}
	var resp FavoritesResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveFavorites replaces the favorites set with the given employee ids.
func (c *Client) SaveFavorites(ctx context.Context, ids []int64) error {
	u, err := c.pageMethodURL(c.endpoints.Favorites, "SalvaDipendentiPerRubrica", nil)
	if err != nil {
		return err
	}
	payload := make([]favoriteRef, 0, len(ids))
	for _, id := range ids {
		payload = append(payload, favoriteRef{ID: id})
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, u, payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("portal refused favorites update for %d ids", len(ids))
	}
	return nil
}

// FetchSchedules retrieves the work schedule descriptors of the favorites.
func (c *Client) FetchSchedules(ctx context.Context) ([]Schedule, error) {
	u, err := c.pageMethodURL(c.endpoints.Favorites, "ReadOrariPreferiti", nil)
	if err != nil {
		return nil, err
	}
	var schedules []Schedule
	if err := c.do(ctx, http.MethodGet, u, nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *Client) pageMethodURL(endpoint, method string, extra map[string]string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint url: %w", err)
	}
	q := u.Query()
	q.Set("PageMethod", method)
	for k, v := range extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	c.log.Info("request", zap.String("url", u.String()))
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, dest any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrAuthExpired
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		// An undecodable body on a 2xx almost always means the portal
		// served its login page instead of JSON.
		return ErrAuthExpired
	}
	return nil
}

// timesheetRequest mirrors the ConsultaCartellino payload. Most fields ride
// along with their zero values; the portal requires their presence.
type timesheetRequest struct {
	Start            string   `json:"_dtdatainizio"`
	End              string   `json:"_dtdatafine"`
	Employees        []string `json:"dipendenti"`
	Language         string   `json:"lingua"`
	OnlyAnomalous    bool     `json:"sologganomali"`
	OnlyValidated    bool     `json:"soloconvalidati"`
	WithOvertimeAuth bool     `json:"conautstra"`
	RequestType      int      `json:"_itiporichiesta"`
	ReportID         int      `json:"_iidprospetto"`
	ConsultationType int      `json:"_itipoconsultazione"`
	Ordering         string   `json:"ordinamentodip"`
}

type favoriteRef struct {
	ID int64 `json:"_iid"`
}
