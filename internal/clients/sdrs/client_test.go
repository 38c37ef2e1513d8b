package sdrs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	require.NoError(t, err)
	c, err := New(log, Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func respond(t *testing.T, w http.ResponseWriter, relatesTo uuid.UUID, body GatewayOperationTypeResponse, status MessageStatus) {
	t.Helper()
	err := json.NewEncoder(w).Encode(response{
		MessageHeader: MessageHeader{
			MessageID: MessageID{UUID: uuid.New(), RelatesTo: relatesTo.String()},
			TimeStamp: time.Now().UTC(),
			From:      "SDRS_AZURE",
			To:        "CONSUMER_APPLICATION",
		},
		MessageBody:   responseBody{GatewayOperationType: body},
		MessageStatus: status,
	})
	require.NoError(t, err)
}

func TestOffencesEnvelope(t *testing.T) {
	var got request
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sdrs/sdrs/sdrsApi", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{
			GetOffenceResponse: &GetOffenceResponse{
				Offences: []Offence{{Code: "TH68001", OffenceRevisionID: 3}},
			},
		}, MessageStatus{Status: "SUCCESS"})
	}))

	since := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	offs, err := c.Offences(context.Background(), "T", false, &since)
	require.NoError(t, err)

	require.Len(t, offs, 1)
	assert.Equal(t, "TH68001", offs[0].Code)

	assert.Equal(t, "GetOffence", got.MessageHeader.MessageType)
	assert.Equal(t, "CONSUMER_APPLICATION", got.MessageHeader.From)
	assert.Equal(t, "SDRS_AZURE", got.MessageHeader.To)
	assert.NotEqual(t, uuid.Nil, got.MessageHeader.MessageID.UUID)

	op := got.MessageBody.GatewayOperationType.GetOffenceRequest
	require.NotNil(t, op)
	assert.Equal(t, "T", op.AlphaChar)
	assert.Equal(t, "CURRENT", op.AllOffences)
	require.NotNil(t, op.ChangedDate)
	assert.True(t, op.ChangedDate.Equal(since))
}

func TestOffencesFullLoadRequestsAll(t *testing.T) {
	var got request
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{
			GetOffenceResponse: &GetOffenceResponse{},
		}, MessageStatus{Status: "SUCCESS"})
	}))

	_, err := c.Offences(context.Background(), "A", true, nil)
	require.NoError(t, err)

	op := got.MessageBody.GatewayOperationType.GetOffenceRequest
	require.NotNil(t, op)
	assert.Equal(t, "ALL", op.AllOffences)
	assert.Nil(t, op.ChangedDate)
}

func TestOffencesRequiresAlphaChar(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.Offences(context.Background(), " ", true, nil)
	assert.Error(t, err)
}

func TestControlTable(t *testing.T) {
	var got request
	lastUpdate := time.Date(2024, time.February, 1, 6, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{
			GetControlTableResponse: &GetControlTableResponse{
				ReferenceDataSet: []ControlTableRecord{
					{DataSet: "OFFENCES_A", LastUpdate: lastUpdate},
				},
			},
		}, MessageStatus{Status: "SUCCESS"})
	}))

	records, err := c.ControlTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "GetControlTableRequest", got.MessageHeader.MessageType)
	require.NotNil(t, got.MessageBody.GatewayOperationType.GetControlTableRequest)
	require.Len(t, records, 1)
	assert.Equal(t, "OFFENCES_A", records[0].DataSet)
	assert.True(t, records[0].LastUpdate.Equal(lastUpdate))
}

func TestCacheNotFoundErrored(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{},
			MessageStatus{Status: "ERRORED", Code: ErrCodeCacheNotFound, Reason: "no cache file"})
	}))

	_, err := c.Offences(context.Background(), "Q", true, nil)
	require.Error(t, err)

	var notFound *CacheNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "OFFENCES_Q", notFound.Cache)
}

func TestOtherErroredCodesAreOpaque(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{},
			MessageStatus{Status: "ERRORED", Code: ErrCodeDuplicateRequest, Reason: "duplicate"})
	}))

	_, err := c.MojOffences(context.Background(), true, nil)
	require.Error(t, err)
	var notFound *CacheNotFoundError
	assert.False(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), ErrCodeDuplicateRequest)
}

func TestMojOffencesMessageType(t *testing.T) {
	var got request
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(t, w, got.MessageHeader.MessageID.UUID, GatewayOperationTypeResponse{
			GetMojOffenceResponse: &GetOffenceResponse{},
		}, MessageStatus{Status: "SUCCESS"})
	}))

	_, err := c.MojOffences(context.Background(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "GetMojOffence", got.MessageHeader.MessageType)
	require.NotNil(t, got.MessageBody.GatewayOperationType.GetMojOffenceRequest)
}
