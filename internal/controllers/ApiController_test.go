package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"snapshotd/internal/models"
	"snapshotd/internal/services"
	"snapshotd/internal/snapshot"
	"snapshotd/internal/structures"
	"snapshotd/internal/testutil"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAddress = "inj1abcdefghijklmnopqrst"

func newController(maxBody int64) (*ApiController, *testutil.MockSnapshotStore, *testutil.MockLogger) {
	conf := &structures.Config{Snapshot: structures.SnapshotConfig{MaxBodyBytes: maxBody}}
	logger := &testutil.MockLogger{}
	store := testutil.NewMockSnapshotStore()
	svc := services.NewSyncService(conf, store, snapshot.NewSanitizer(conf), &testutil.MockMetrics{}, logger)
	return NewApiController(conf, logger, svc), store, logger
}

func do(h http.HandlerFunc, method, address, body string) *httptest.ResponseRecorder {
	target := "/snapshot?address=" + address
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(method, target, reader))
	return rr
}

func TestGetSnapshot_AbsentIsDataNull(t *testing.T) {
	ac, _, _ := newController(0)

	rr := do(ac.GetSnapshot, http.MethodGet, validAddress, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":null}`, rr.Body.String())
}

func TestSaveThenGetSnapshot(t *testing.T) {
	ac, _, _ := newController(0)

	rr := do(ac.SaveSnapshot, http.MethodPost, validAddress, `{"stake":{"data":[1,2,3]},"nw":{"times":[10],"usd":["1.5"]}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var saved struct {
		Accepted   bool   `json:"accepted"`
		StoredAt   string `json:"storedAt"`
		CapturedAt int64  `json:"capturedAt"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &saved))
	assert.True(t, saved.Accepted)
	assert.NotEmpty(t, saved.StoredAt)
	assert.Positive(t, saved.CapturedAt)

	rr = do(ac.GetSnapshot, http.MethodGet, validAddress, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var read struct {
		Data *models.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &read))
	require.NotNil(t, read.Data)
	assert.Equal(t, saved.CapturedAt, read.Data.CapturedAt)
	assert.Equal(t, []string{snapshot.DefaultStakeType, snapshot.DefaultStakeType, snapshot.DefaultStakeType}, read.Data.Stake.Types)
	assert.Equal(t, []models.Number{1.5}, read.Data.NetWorth.USD)
}

func TestPurgeSnapshot(t *testing.T) {
	ac, _, _ := newController(0)
	require.Equal(t, http.StatusOK, do(ac.SaveSnapshot, http.MethodPost, validAddress, `{}`).Code)

	rr := do(ac.PurgeSnapshot, http.MethodDelete, validAddress, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"purged":true,"deleted":1,"failed":0}`, rr.Body.String())
	assert.JSONEq(t, `{"data":null}`, do(ac.GetSnapshot, http.MethodGet, validAddress, "").Body.String())
}

func TestInvalidAddressIs400WithoutStoreAccess(t *testing.T) {
	ac, store, _ := newController(0)

	for _, h := range []http.HandlerFunc{ac.GetSnapshot, ac.SaveSnapshot, ac.PurgeSnapshot} {
		rr := do(h, http.MethodPost, "bad-address", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
	assert.Equal(t, http.StatusBadRequest, do(ac.GetSnapshot, http.MethodGet, "", "").Code)
	assert.Equal(t, 0, store.StoreCalls())
}

func TestSaveSnapshot_TooLargeIs413(t *testing.T) {
	ac, store, _ := newController(16)

	rr := do(ac.SaveSnapshot, http.MethodPost, validAddress, `{"stake":{"data":[1,2,3,4,5,6,7,8]}}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, 0, store.SaveCalls)
}

func TestSaveSnapshot_MalformedIs400(t *testing.T) {
	ac, store, _ := newController(0)

	for _, body := range []string{"{oops", "[1]", "null"} {
		rr := do(ac.SaveSnapshot, http.MethodPost, validAddress, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Equal(t, 0, store.SaveCalls)
}

func TestSaveSnapshot_StoreFailureIs502(t *testing.T) {
	ac, store, _ := newController(0)
	store.SaveErr = fmt.Errorf("%w: %w", services.ErrStoreUnavailable, errors.New("dial tcp: refused"))

	rr := do(ac.SaveSnapshot, http.MethodPost, validAddress, `{}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, rr.Body.String(), "refused")
}

func TestUnexpectedErrorIs500AndLogged(t *testing.T) {
	logger := &testutil.MockLogger{}
	svc := &testutil.MockSyncService{
		ReadFn: func(context.Context, string) (*models.Snapshot, error) {
			return nil, errors.New("boom")
		},
		PurgeFn: func(context.Context, string) (*models.PurgeResult, error) {
			return nil, errors.New("boom")
		},
	}
	ac := NewApiController(&structures.Config{}, logger, svc)

	rr := do(ac.GetSnapshot, http.MethodGet, validAddress, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "boom")

	rr = do(ac.PurgeSnapshot, http.MethodDelete, validAddress, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 2, logger.Count("error"))
}
