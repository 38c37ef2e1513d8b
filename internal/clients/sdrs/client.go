package sdrs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opencourts/offence-registry-backend/internal/pkg/httpx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// Response codes the reference source signals inside an otherwise successful
// HTTP exchange.
const (
	ErrCodeDuplicateRequest = "SDRS-99903"
	ErrCodeCacheNotFound    = "SDRS-99918"
)

// CacheNotFoundError means the requested partition has no cache file on the
// reference source yet. Callers treat the shard as failed and retry on a
// later run.
type CacheNotFoundError struct {
	Cache string
}

func (e *CacheNotFoundError) Error() string {
	return fmt.Sprintf("reference source has no cache file for %s", e.Cache)
}

// Client speaks the reference source's single-endpoint envelope protocol:
// every call is a POST whose MessageType selects the operation.
type Client interface {
	ControlTable(ctx context.Context) ([]ControlTableRecord, error)
	Offences(ctx context.Context, alphaChar string, allOffences bool, changedDate *time.Time) ([]Offence, error)
	Applications(ctx context.Context, allOffences bool, changedDate *time.Time) ([]Offence, error)
	MojOffences(ctx context.Context, allOffences bool, changedDate *time.Time) ([]Offence, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
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
		return nil, fmt.Errorf("missing SDRS base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &client{
		log:  log.With("client", "SdrsClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// -------------------- Envelope --------------------

type MessageID struct {
	UUID      uuid.UUID `json:"uuid"`
	RelatesTo string    `json:"relatesTo,omitempty"`
}

type MessageHeader struct {
	MessageID   MessageID `json:"messageID"`
	TimeStamp   time.Time `json:"timeStamp"`
	MessageType string    `json:"messageType"`
	From        string    `json:"from"`
	To          string    `json:"to"`
}

type GetOffenceRequest struct {
	AlphaChar   string     `json:"alphaChar,omitempty"`
	AllOffences string     `json:"allOffences"`
	ChangedDate *time.Time `json:"changedDate,omitempty"`
}

type GatewayOperationTypeRequest struct {
	GetControlTableRequest *struct{}          `json:"getControlTableRequest,omitempty"`
	GetOffenceRequest      *GetOffenceRequest `json:"getOffenceRequest,omitempty"`
	GetApplicationRequest  *GetOffenceRequest `json:"getApplicationRequest,omitempty"`
	GetMojOffenceRequest   *GetOffenceRequest `json:"getMojOffenceRequest,omitempty"`
}

type requestBody struct {
	GatewayOperationType GatewayOperationTypeRequest `json:"gatewayOperationType"`
}

type request struct {
	MessageHeader MessageHeader `json:"messageHeader"`
	MessageBody   requestBody   `json:"messageBody"`
}

type MessageStatus struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type ControlTableRecord struct {
	DataSet    string    `json:"dataSet"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type GetControlTableResponse struct {
	ReferenceDataSet []ControlTableRecord `json:"referenceDataSet"`
}

// Offence is the reference source's representation of one offence revision.
type Offence struct {
	OffenceRevisionID           int        `json:"offenceRevisionId"`
	Code                        string     `json:"code"`
	Description                 string     `json:"description"`
	CjsTitle                    string     `json:"cjsTitle,omitempty"`
	OffenceStartDate            time.Time  `json:"offenceStartDate"`
	OffenceEndDate              *time.Time `json:"offenceEndDate,omitempty"`
	Category                    *int       `json:"category,omitempty"`
	SubCategory                 *int       `json:"subCategory,omitempty"`
	OffenceActsAndSections      string     `json:"offenceActsAndSections,omitempty"`
	CustodialIndicator          string     `json:"custodialIndicator,omitempty"`
	MaxPeriodIsLife             *bool      `json:"maxPeriodIsLife,omitempty"`
	MaxPeriodOfIndictmentYears  *int       `json:"maxPeriodOfIndictmentYears,omitempty"`
	MaxPeriodOfIndictmentMonths *int       `json:"maxPeriodOfIndictmentMonths,omitempty"`
	MaxPeriodOfIndictmentWeeks  *int       `json:"maxPeriodOfIndictmentWeeks,omitempty"`
	MaxPeriodOfIndictmentDays   *int       `json:"maxPeriodOfIndictmentDays,omitempty"`
	ChangedDate                 time.Time  `json:"changedDate"`
}

type GetOffenceResponse struct {
	Offences []Offence `json:"offence"`
}

type GatewayOperationTypeResponse struct {
	GetControlTableResponse *GetControlTableResponse `json:"getControlTableResponse,omitempty"`
	GetOffenceResponse      *GetOffenceResponse      `json:"getOffenceResponse,omitempty"`
	GetApplicationResponse  *GetOffenceResponse      `json:"getApplicationResponse,omitempty"`
	GetMojOffenceResponse   *GetOffenceResponse      `json:"getMojOffenceResponse,omitempty"`
}

type responseBody struct {
	GatewayOperationType GatewayOperationTypeResponse `json:"gatewayOperationType"`
}

type response struct {
	MessageHeader MessageHeader `json:"messageHeader"`
	MessageBody   responseBody  `json:"messageBody"`
	MessageStatus MessageStatus `json:"messageStatus"`
}

// -------------------- Operations --------------------

func (c *client) ControlTable(ctx context.Context) ([]ControlTableRecord, error) {
	resp, err := c.call(ctx, "GetControlTableRequest", GatewayOperationTypeRequest{
		GetControlTableRequest: &struct{}{},
	}, "")
	if err != nil {
		return nil, err
	}
	if resp.MessageBody.GatewayOperationType.GetControlTableResponse == nil {
		return nil, fmt.Errorf("control table response missing body")
	}
	return resp.MessageBody.GatewayOperationType.GetControlTableResponse.ReferenceDataSet, nil
}

func (c *client) Offences(ctx context.Context, alphaChar string, allOffences bool, changedDate *time.Time) ([]Offence, error) {
	if strings.TrimSpace(alphaChar) == "" {
		return nil, fmt.Errorf("alphaChar required")
	}
	resp, err := c.call(ctx, "GetOffence", GatewayOperationTypeRequest{
		GetOffenceRequest: &GetOffenceRequest{
			AlphaChar:   alphaChar,
			AllOffences: allOffencesFlag(allOffences),
			ChangedDate: changedDate,
		},
	}, "OFFENCES_"+alphaChar)
	if err != nil {
		return nil, err
	}
	if resp.MessageBody.GatewayOperationType.GetOffenceResponse == nil {
		return nil, fmt.Errorf("offence response missing body")
	}
	return resp.MessageBody.GatewayOperationType.GetOffenceResponse.Offences, nil
}

func (c *client) Applications(ctx context.Context, allOffences bool, changedDate *time.Time) ([]Offence, error) {
	resp, err := c.call(ctx, "GetApplications", GatewayOperationTypeRequest{
		GetApplicationRequest: &GetOffenceRequest{
			AllOffences: allOffencesFlag(allOffences),
			ChangedDate: changedDate,
		},
	}, "APPLICATIONS")
	if err != nil {
		return nil, err
	}
	if resp.MessageBody.GatewayOperationType.GetApplicationResponse == nil {
		return nil, fmt.Errorf("application response missing body")
	}
	return resp.MessageBody.GatewayOperationType.GetApplicationResponse.Offences, nil
}

func (c *client) MojOffences(ctx context.Context, allOffences bool, changedDate *time.Time) ([]Offence, error) {
	resp, err := c.call(ctx, "GetMojOffence", GatewayOperationTypeRequest{
		GetMojOffenceRequest: &GetOffenceRequest{
			AllOffences: allOffencesFlag(allOffences),
			ChangedDate: changedDate,
		},
	}, "MOJ_OFFENCE")
	if err != nil {
		return nil, err
	}
	if resp.MessageBody.GatewayOperationType.GetMojOffenceResponse == nil {
		return nil, fmt.Errorf("moj offence response missing body")
	}
	return resp.MessageBody.GatewayOperationType.GetMojOffenceResponse.Offences, nil
}

func (c *client) call(ctx context.Context, messageType string, op GatewayOperationTypeRequest, cache string) (*response, error) {
	req := request{
		MessageHeader: MessageHeader{
			MessageID:   MessageID{UUID: uuid.New()},
			TimeStamp:   time.Now().UTC(),
			MessageType: messageType,
			From:        "CONSUMER_APPLICATION",
			To:          "SDRS_AZURE",
		},
		MessageBody: requestBody{GatewayOperationType: op},
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/sdrs/sdrs/sdrsApi"
	var out response
	if err := httpx.DoJSON(ctx, c.http, http.MethodPost, u, req, &out); err != nil {
		return nil, err
	}

	if strings.EqualFold(out.MessageStatus.Status, "ERRORED") {
		switch out.MessageStatus.Code {
		case ErrCodeCacheNotFound:
			return nil, &CacheNotFoundError{Cache: cache}
		default:
			return nil, fmt.Errorf("reference source errored for %s: code=%s reason=%s",
				messageType, out.MessageStatus.Code, out.MessageStatus.Reason)
		}
	}
	return &out, nil
}

func allOffencesFlag(all bool) string {
	if all {
		return "ALL"
	}
	return "CURRENT"
}
