package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"vertical/internal/audit"
	auditstore "vertical/internal/audit/store"
	authmodels "vertical/internal/auth/models"
	authservice "vertical/internal/auth/service"
	contractstore "vertical/internal/auth/store/contract"
	identstore "vertical/internal/auth/store/identification"
	"vertical/internal/platform/health"
	relhandler "vertical/internal/reliability/handler"
	"vertical/internal/reliability/hasher"
	relmodels "vertical/internal/reliability/models"
	relservice "vertical/internal/reliability/service"
	relstore "vertical/internal/reliability/store"
	httptransport "vertical/internal/transport/http"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/middleware/request"
)

const contractTimeLayout = "2006.01.02 15:04:05"

// TestContext holds one in-process server and the state shared between steps.
type TestContext struct {
	server     *httptest.Server
	HTTPClient *http.Client

	contracts *contractstore.InMemory
	history   *relstore.InMemory
	hasher    *hasher.PBKDF2
	Audit     *auditstore.InMemory

	Token            string
	LastRequestID    string
	LastResponse     *http.Response
	LastResponseBody []byte
}

// NewTestContext wires the full router over in-memory stores and starts it.
func NewTestContext() *TestContext {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tc := &TestContext{
		contracts: contractstore.NewInMemory(),
		history:   relstore.NewInMemory(),
		hasher:    hasher.NewPBKDF2("e2e-salt", 10),
		Audit:     auditstore.NewInMemory(),
	}

	authSvc := authservice.New(tc.contracts, identstore.NewInMemory(), authservice.WithLogger(logger))
	relSvc := relservice.New(tc.history, tc.hasher, 180, relservice.WithLogger(logger))

	healthHandler := health.New(logger, time.Second)
	healthHandler.RegisterCheck("auth_db", authSvc.Ping)
	healthHandler.RegisterCheck("hunter_db", tc.history.Ping)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:       logger,
		AuthLogger:   logger,
		Recorder:     audit.New(tc.Audit, audit.WithLogger(logger), audit.WithIgnorePaths("/ping")),
		Authorizer:   authSvc,
		Health:       healthHandler,
		Reliability:  relhandler.New(relSvc, logger),
		Latency:      request.NewMetricsWith(prometheus.NewRegistry()),
		MaxBodyBytes: 1 << 20,
	})

	tc.server = httptest.NewServer(router)
	tc.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	return tc
}

// Close stops the server.
func (tc *TestContext) Close() {
	tc.server.Close()
}

// PutContract stores a contract for token, optionally expired or revoked at a
// "YYYY.MM.DD HH:MM:SS" UTC instant.
func (tc *TestContext) PutContract(token, expiredAt, revokedAt string) error {
	c := &authmodels.Contract{
		ID:        id.ContractID(uuid.New()),
		ClientID:  id.ClientID(uuid.New()),
		Token:     token,
		CreatedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, f := range []struct {
		raw string
		dst **time.Time
	}{{expiredAt, &c.ExpiredAt}, {revokedAt, &c.RevokedAt}} {
		if f.raw == "" {
			continue
		}
		at, err := time.ParseInLocation(contractTimeLayout, f.raw, time.UTC)
		if err != nil {
			return fmt.Errorf("parse contract instant %q: %w", f.raw, err)
		}
		*f.dst = &at
	}
	tc.contracts.Put(c)
	tc.Token = token
	return nil
}

// AddSubmission records a past submission for phone by the given person.
func (tc *TestContext) AddSubmission(phone, name, birthday, date string) error {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return fmt.Errorf("parse submission date %q: %w", date, err)
	}
	tc.history.Add(relmodels.Submission{
		ID:           uuid.NewString()[:10],
		Date:         d,
		PhoneHash:    tc.hasher.Hash(phone),
		NameHash:     tc.hasher.Hash(name),
		BirthdayHash: tc.hasher.Hash(birthday),
	})
	return nil
}

// Do sends a request. Headers with an empty value are removed, so a step can
// drop the defaults.
func (tc *TestContext) Do(method, path, body string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.server.URL+path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	tc.LastRequestID = uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(request.HeaderRequestID, tc.LastRequestID)
	if tc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.Token)
	}
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}
