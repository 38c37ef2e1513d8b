package nomis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opencourts/offence-registry-backend/internal/pkg/httpx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// Client is the target-system reference-data API. All writes are
// full-representation puts or posts; the target applies them atomically per
// call.
type Client interface {
	OffencesByCode(ctx context.Context, codePrefix string, page int) (*OffencePage, error)
	CreateStatutes(ctx context.Context, statutes []Statute) error
	CreateHomeOfficeCodes(ctx context.Context, hoCodes []HomeOfficeCode) error
	CreateOffences(ctx context.Context, offs []Offence) error
	UpdateOffences(ctx context.Context, offs []Offence) error
	UpdateOffenceActiveFlag(ctx context.Context, offenceCode, activeFlag string, expiryDate *string) error
	LinkToSchedule(ctx context.Context, mappings []ScheduleMapping) error
	UnlinkFromSchedule(ctx context.Context, mappings []ScheduleMapping) error
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing NOMIS base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &client{
		log:  log.With("client", "NomisClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type Statute struct {
	Code           string `json:"code"`
	Description    string `json:"description"`
	LegislatingAct string `json:"legislatingAct"`
	ActiveFlag     string `json:"activeFlag"`
}

type HomeOfficeCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	ActiveFlag  string `json:"activeFlag"`
}

type Offence struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	CjsTitle        string  `json:"cjsTitle,omitempty"`
	StatuteCode     Statute `json:"statuteCode"`
	HoCode          *string `json:"hoCode,omitempty"`
	SeverityRanking string  `json:"severityRanking"`
	ActiveFlag      string  `json:"activeFlag"`
	ExpiryDate      *string `json:"expiryDate,omitempty"`
}

type OffencePage struct {
	Content    []Offence `json:"content"`
	TotalPages int       `json:"totalPages"`
	Number     int       `json:"number"`
	Last       bool      `json:"last"`
}

type ScheduleMapping struct {
	OffenceCode  string `json:"offenceCode"`
	ScheduleCode string `json:"schedule"`
}

func (c *client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// OffencesByCode pages through the target system's offences whose code starts
// with codePrefix, ordered by code so pages are stable across requests.
func (c *client) OffencesByCode(ctx context.Context, codePrefix string, page int) (*OffencePage, error) {
	if strings.TrimSpace(codePrefix) == "" {
		return nil, fmt.Errorf("codePrefix required")
	}
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("size", fmt.Sprintf("%d", c.cfg.PageSize))
	q.Set("sort", "code,ASC")

	u := c.url("/offences/code/"+url.PathEscape(codePrefix)) + "?" + q.Encode()
	var out OffencePage
	if err := httpx.DoJSON(ctx, c.http, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) CreateStatutes(ctx context.Context, statutes []Statute) error {
	if len(statutes) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPost, c.url("/offences/statute"), statutes, nil)
}

func (c *client) CreateHomeOfficeCodes(ctx context.Context, hoCodes []HomeOfficeCode) error {
	if len(hoCodes) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPost, c.url("/offences/ho-code"), hoCodes, nil)
}

func (c *client) CreateOffences(ctx context.Context, offs []Offence) error {
	if len(offs) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPost, c.url("/offences/offence"), offs, nil)
}

func (c *client) UpdateOffences(ctx context.Context, offs []Offence) error {
	if len(offs) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPut, c.url("/offences/offence"), offs, nil)
}

// UpdateOffenceActiveFlag flips the offence's active flag in the target
// system. A deactivation also carries the expiry date so the target records
// when the offence stopped applying.
func (c *client) UpdateOffenceActiveFlag(ctx context.Context, offenceCode, activeFlag string, expiryDate *string) error {
	body := struct {
		OffenceCode string  `json:"offenceCode"`
		ActiveFlag  string  `json:"activeFlag"`
		ExpiryDate  *string `json:"expiryDate,omitempty"`
	}{
		OffenceCode: offenceCode,
		ActiveFlag:  activeFlag,
		ExpiryDate:  expiryDate,
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPut, c.url("/offences/update-active-flag"), body, nil)
}

func (c *client) LinkToSchedule(ctx context.Context, mappings []ScheduleMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPost, c.url("/offences/link-to-schedule"), mappings, nil)
}

func (c *client) UnlinkFromSchedule(ctx context.Context, mappings []ScheduleMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	return httpx.DoJSON(ctx, c.http, http.MethodPost, c.url("/offences/unlink-from-schedule"), mappings, nil)
}
