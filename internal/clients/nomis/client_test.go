package nomis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourts/offence-registry-backend/internal/pkg/httpx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	require.NoError(t, err)
	c, err := New(log, Config{BaseURL: srv.URL, PageSize: 2})
	require.NoError(t, err)
	return c
}

func TestOffencesByCodeQueryParams(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(OffencePage{Last: true})
	}))

	_, err := c.OffencesByCode(context.Background(), "TH68", 3)
	require.NoError(t, err)

	assert.Equal(t, "/offences/code/TH68", gotPath)
	assert.Contains(t, gotQuery, "page=3")
	assert.Contains(t, gotQuery, "size=2")
	assert.Contains(t, gotQuery, "sort=code%2CASC")
}

func TestOffencesByCodePagination(t *testing.T) {
	pages := []OffencePage{
		{Content: []Offence{{Code: "TH68001"}, {Code: "TH68002"}}, TotalPages: 2, Number: 0},
		{Content: []Offence{{Code: "TH68003"}}, TotalPages: 2, Number: 1, Last: true},
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if r.URL.Query().Get("page") == "1" {
			page = 1
		}
		_ = json.NewEncoder(w).Encode(pages[page])
	}))

	first, err := c.OffencesByCode(context.Background(), "TH68", 0)
	require.NoError(t, err)
	assert.Len(t, first.Content, 2)
	assert.False(t, first.Last)

	second, err := c.OffencesByCode(context.Background(), "TH68", 1)
	require.NoError(t, err)
	assert.Len(t, second.Content, 1)
	assert.True(t, second.Last)
}

func TestOffencesByCodeRequiresPrefix(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.OffencesByCode(context.Background(), "  ", 0)
	assert.Error(t, err)
}

func TestCreateOffencesSendsBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []Offence
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.CreateOffences(context.Background(), []Offence{
		{Code: "TH68001", Description: "Theft", SeverityRanking: "5", ActiveFlag: "Y"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/offences/offence", gotPath)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "TH68001", gotBody[0].Code)
}

func TestCreateStatutesPath(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.CreateStatutes(context.Background(), []Statute{
		{Code: "TH68", Description: "Theft Act 1968", ActiveFlag: "Y"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/offences/statute", gotPath)
}

func TestCreateHomeOfficeCodesPath(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.CreateHomeOfficeCodes(context.Background(), []HomeOfficeCode{
		{Code: "  5/ 3", Description: "  5/ 3", ActiveFlag: "Y"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/offences/ho-code", gotPath)
}

func TestCreateOffencesEmptySliceSkipsRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	assert.NoError(t, c.CreateOffences(context.Background(), nil))
}

func TestUpdateOffenceActiveFlag(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/offences/update-active-flag", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))

	expiry := "2024-01-01"
	require.NoError(t, c.UpdateOffenceActiveFlag(context.Background(), "TH68001", "N", &expiry))
	assert.Equal(t, "TH68001", gotBody["offenceCode"])
	assert.Equal(t, "N", gotBody["activeFlag"])
	assert.Equal(t, "2024-01-01", gotBody["expiryDate"])
}

func TestUpdateOffenceActiveFlagOmitsAbsentExpiry(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))

	require.NoError(t, c.UpdateOffenceActiveFlag(context.Background(), "TH68001", "Y", nil))
	assert.Equal(t, "Y", gotBody["activeFlag"])
	_, present := gotBody["expiryDate"]
	assert.False(t, present)
}

func TestNon2xxReturnsStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := c.OffencesByCode(context.Background(), "TH68", 0)
	require.Error(t, err)
	var statusErr *httpx.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestNewValidatesConfig(t *testing.T) {
	log, err := logger.New("test")
	require.NoError(t, err)

	_, err = New(log, Config{})
	assert.Error(t, err)
	_, err = New(nil, Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}
