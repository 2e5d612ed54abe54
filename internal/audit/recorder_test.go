package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	auditmetrics "vertical/internal/audit/metrics"
	"vertical/internal/audit/models"
	"vertical/internal/audit/store"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/httputil"
	"vertical/pkg/platform/middleware/request"
	"vertical/pkg/platform/middleware/requesttime"
	"vertical/pkg/requestcontext"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveRequest(ctx context.Context, req *models.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockStore) SaveResponse(ctx context.Context, resp *models.Response) error {
	return m.Called(ctx, resp).Error(0)
}

type RecorderSuite struct {
	suite.Suite
	store     *store.InMemory
	accessBuf *bytes.Buffer
	metrics   *auditmetrics.Metrics
	called    bool
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.accessBuf = &bytes.Buffer{}
	s.metrics = auditmetrics.NewWith(prometheus.NewRegistry())
	s.called = false
}

func (s *RecorderSuite) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		if p := requestcontext.PrincipalFrom(r.Context()); p != nil {
			p.ContractID = "c0ffee"
		}
		httputil.WriteOK(w, map[string]string{"echo": r.URL.Path})
	})
}

// chain assembles the gate in the same order as the router.
func (s *RecorderSuite) chain(st Store, next http.Handler) http.Handler {
	rec := New(st,
		WithLogger(slog.New(slog.DiscardHandler)),
		WithAccessLogger(slog.New(slog.NewJSONHandler(s.accessBuf, nil))),
		WithMetrics(s.metrics),
		WithIgnorePaths("/ping"),
	)
	h := rec.Middleware(next)
	h = request.ParseJSONBody(h)
	h = request.ContentTypeJSON(h)
	h = requesttime.Middleware(h)
	return request.RequestID(h)
}

func (s *RecorderSuite) do(h http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func (s *RecorderSuite) TestRecordsRequestAndResponse() {
	rid := uuid.NewString()
	w := s.do(s.chain(s.store, s.handler()), "/health", `{"a":1}`, map[string]string{
		request.HeaderRequestID: rid,
		"User-Agent":            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	})

	s.Equal(http.StatusOK, w.Code)
	s.True(s.called)

	requestID, err := id.ParseRequestID(rid)
	s.Require().NoError(err)

	recorded, ok := s.store.Request(requestID)
	s.Require().True(ok)
	s.Equal("/health", recorded.Path)
	s.Equal(http.MethodPost, recorded.Method)
	s.JSONEq(`{"a":1}`, string(recorded.Body))

	resp, ok := s.store.Response(requestID)
	s.Require().True(ok)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(w.Body.String(), string(resp.Body))

	var line map[string]any
	s.Require().NoError(json.Unmarshal(s.accessBuf.Bytes(), &line))
	s.Equal("access info", line["msg"])
	s.Equal(rid, line["request_id"])
	s.Equal("c0ffee", line["contract_id"])
	s.Equal("-", line["referer"])
	s.Equal(float64(http.StatusOK), line["response_code"])
	s.Equal(float64(len(resp.Body)), line["response_length"])
	s.Equal("Chrome 120.0", line["ua_browser"])
	s.Len(line["user_agent"], 64)
}

func (s *RecorderSuite) TestEmptyBodyStoredAsNull() {
	s.do(s.chain(s.store, s.handler()), "/health", "", nil)

	requests := s.store.Requests()
	s.Require().Len(requests, 1)
	s.Nil(requests[0].Body)
	s.Equal(1, s.store.ResponseCount())
}

func (s *RecorderSuite) TestIgnoredPathIsNotRecorded() {
	w := s.do(s.chain(s.store, s.handler()), "/ping", "", nil)

	s.Equal(http.StatusOK, w.Code)
	s.True(s.called)
	s.Empty(s.store.Requests())
	s.Zero(s.accessBuf.Len())
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Skipped))
}

func (s *RecorderSuite) TestMissingContentTypeWritesNoRows() {
	w := s.do(s.chain(s.store, s.handler()), "/health", "{}", map[string]string{"Content-Type": ""})

	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"message":"Content-Type header not recognized"}`, w.Body.String())
	s.False(s.called)
	s.Empty(s.store.Requests())
}

func (s *RecorderSuite) TestMalformedRequestIDWritesNoRows() {
	w := s.do(s.chain(s.store, s.handler()), "/health", "{}", map[string]string{request.HeaderRequestID: "not-a-uuid"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.Empty(s.store.Requests())
}

func (s *RecorderSuite) TestRejectedCallsAreStillAudited() {
	reject := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Invalid access token", nil)
	})
	w := s.do(s.chain(s.store, reject), "/reliability/phone", `{"number":"79991234567"}`, nil)

	s.Equal(http.StatusUnauthorized, w.Code)
	requests := s.store.Requests()
	s.Require().Len(requests, 1)
	resp, ok := s.store.Response(requests[0].ID)
	s.Require().True(ok)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RecorderSuite) TestRequestPersistFailureAbortsChain() {
	st := new(mockStore)
	st.On("SaveRequest", mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := s.do(s.chain(st, s.handler()), "/health", "{}", nil)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"message":"Internal server error"}`, w.Body.String())
	s.False(s.called)
	st.AssertNotCalled(s.T(), "SaveResponse", mock.Anything, mock.Anything)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.PersistFailures.WithLabelValues(auditmetrics.RecordRequest)))
}

func (s *RecorderSuite) TestResponsePersistFailureStillResponds() {
	st := new(mockStore)
	st.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)
	st.On("SaveResponse", mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := s.do(s.chain(st, s.handler()), "/health", "{}", nil)

	s.Equal(http.StatusOK, w.Code)
	s.True(s.called)
	s.Contains(w.Body.String(), `"echo":"/health"`)
	s.Zero(s.accessBuf.Len())
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.PersistFailures.WithLabelValues(auditmetrics.RecordResponse)))
}

func (s *RecorderSuite) TestResponseSavedAfterClientGone() {
	st := new(mockStore)
	st.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)
	st.On("SaveResponse", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	disconnecting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		httputil.WriteOK(w, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/health", strings.NewReader("{}")).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	s.chain(st, disconnecting).ServeHTTP(httptest.NewRecorder(), req)

	st.AssertExpectations(s.T())
	s.Zero(testutil.ToFloat64(s.metrics.PersistFailures.WithLabelValues(auditmetrics.RecordResponse)))
}

func (s *RecorderSuite) TestHandlerStatusWithoutBody() {
	noContent := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	w := s.do(s.chain(s.store, noContent), "/health", "", nil)

	s.Equal(http.StatusAccepted, w.Code)
	requests := s.store.Requests()
	s.Require().Len(requests, 1)
	resp, _ := s.store.Response(requests[0].ID)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	s.Empty(resp.Body)
}
