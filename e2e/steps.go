package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	id "vertical/pkg/domain"
)

// RegisterSteps registers all step definitions. current returns the context
// of the running scenario.
func RegisterSteps(sc *godog.ScenarioContext, current func() *TestContext) {
	steps := &steps{current: current}

	// Background
	sc.Step(`^the service is running$`, func(context.Context) error { return nil })
	sc.Step(`^a valid contract with token "([^"]*)"$`, steps.validContract)
	sc.Step(`^a contract with token "([^"]*)" expired on "([^"]*)"$`, steps.expiredContract)
	sc.Step(`^a contract with token "([^"]*)" revoked on "([^"]*)"$`, steps.revokedContract)
	sc.Step(`^phone "([^"]*)" was submitted by "([^"]*)" born "([^"]*)" on "([^"]*)"$`, steps.submission)

	// Requests
	sc.Step(`^I check the reliability of phone "([^"]*)"$`, steps.checkPhone)
	sc.Step(`^I check the reliability of phone "([^"]*)" without a Content-Type header$`, steps.checkPhoneWithoutContentType)
	sc.Step(`^I send "([^"]*)" to "([^"]*)" with body:$`, steps.sendWithBody)
	sc.Step(`^I GET "([^"]*)"$`, steps.get)

	// Assertions
	sc.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	sc.Step(`^the response body should be:$`, steps.bodyShouldBe)
	sc.Step(`^the response message should be "([^"]*)"$`, steps.messageShouldBe)
	sc.Step(`^the response message should contain "([^"]*)"$`, steps.messageShouldContain)
	sc.Step(`^the reliability status should be (true|false)$`, steps.reliabilityStatusShouldBe)
	sc.Step(`^the reliability period should be from "([^"]*)" to "([^"]*)"$`, steps.periodShouldBe)
	sc.Step(`^the reliability period should be empty$`, steps.periodShouldBeEmpty)
	sc.Step(`^the request should be audited with status (\d+)$`, steps.auditedWithStatus)
	sc.Step(`^no audit records should exist$`, steps.noAuditRecords)
}

type steps struct {
	current func() *TestContext
}

func (s *steps) validContract(_ context.Context, token string) error {
	return s.current().PutContract(token, "", "")
}

func (s *steps) expiredContract(_ context.Context, token, at string) error {
	return s.current().PutContract(token, at, "")
}

func (s *steps) revokedContract(_ context.Context, token, at string) error {
	return s.current().PutContract(token, "", at)
}

func (s *steps) submission(_ context.Context, phone, name, birthday, date string) error {
	return s.current().AddSubmission(phone, name, birthday, date)
}

func (s *steps) checkPhone(_ context.Context, phone string) error {
	return s.current().Do(http.MethodPost, "/reliability/phone", phoneBody(phone), nil)
}

func (s *steps) checkPhoneWithoutContentType(_ context.Context, phone string) error {
	return s.current().Do(http.MethodPost, "/reliability/phone", phoneBody(phone), map[string]string{"Content-Type": ""})
}

func (s *steps) sendWithBody(_ context.Context, method, path string, body *godog.DocString) error {
	return s.current().Do(method, path, body.Content, nil)
}

func (s *steps) get(_ context.Context, path string) error {
	return s.current().Do(http.MethodGet, path, "", nil)
}

func phoneBody(phone string) string {
	b, _ := json.Marshal(map[string]string{"number": phone}) //nolint:errcheck // string map
	return string(b)
}

func (s *steps) statusShouldBe(_ context.Context, expected int) error {
	tc := s.current()
	if tc.LastResponse.StatusCode != expected {
		return fmt.Errorf("expected status %d but got %d", expected, tc.LastResponse.StatusCode)
	}
	return nil
}

func (s *steps) bodyShouldBe(_ context.Context, expected *godog.DocString) error {
	var want, got bytes.Buffer
	if err := json.Compact(&want, []byte(expected.Content)); err != nil {
		return fmt.Errorf("expected body is not JSON: %w", err)
	}
	if err := json.Compact(&got, s.current().LastResponseBody); err != nil {
		return fmt.Errorf("response body is not JSON: %w", err)
	}
	if want.String() != got.String() {
		return fmt.Errorf("expected body %s but got %s", want.String(), got.String())
	}
	return nil
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type reliability struct {
	Status bool `json:"status"`
	Period *struct {
		RegisteredAt string `json:"registered_at"`
		UpdatedAt    string `json:"updated_at"`
	} `json:"period"`
}

func (s *steps) envelope() (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(s.current().LastResponseBody, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &env, nil
}

func (s *steps) reliability() (*reliability, error) {
	env, err := s.envelope()
	if err != nil {
		return nil, err
	}
	var rel reliability
	if err := json.Unmarshal(env.Data, &rel); err != nil {
		return nil, fmt.Errorf("failed to parse reliability data: %w", err)
	}
	return &rel, nil
}

func (s *steps) messageShouldBe(_ context.Context, expected string) error {
	env, err := s.envelope()
	if err != nil {
		return err
	}
	if env.Message != expected {
		return fmt.Errorf("expected message %q but got %q", expected, env.Message)
	}
	return nil
}

func (s *steps) messageShouldContain(_ context.Context, expected string) error {
	env, err := s.envelope()
	if err != nil {
		return err
	}
	if !strings.Contains(env.Message, expected) {
		return fmt.Errorf("expected message to contain %q but got %q", expected, env.Message)
	}
	return nil
}

func (s *steps) reliabilityStatusShouldBe(_ context.Context, expected string) error {
	rel, err := s.reliability()
	if err != nil {
		return err
	}
	if fmt.Sprint(rel.Status) != expected {
		return fmt.Errorf("expected status %s but got %t", expected, rel.Status)
	}
	return nil
}

func (s *steps) periodShouldBe(_ context.Context, from, to string) error {
	rel, err := s.reliability()
	if err != nil {
		return err
	}
	if rel.Period == nil {
		return fmt.Errorf("expected period %s..%s but got null", from, to)
	}
	if rel.Period.RegisteredAt != from || rel.Period.UpdatedAt != to {
		return fmt.Errorf("expected period %s..%s but got %s..%s", from, to, rel.Period.RegisteredAt, rel.Period.UpdatedAt)
	}
	return nil
}

func (s *steps) periodShouldBeEmpty(context.Context) error {
	rel, err := s.reliability()
	if err != nil {
		return err
	}
	if rel.Period != nil {
		return fmt.Errorf("expected null period but got %+v", *rel.Period)
	}
	return nil
}

func (s *steps) auditedWithStatus(_ context.Context, status int) error {
	tc := s.current()
	requestID, err := id.ParseRequestID(tc.LastRequestID)
	if err != nil {
		return err
	}
	if _, ok := tc.Audit.Request(requestID); !ok {
		return fmt.Errorf("request %s was not recorded", tc.LastRequestID)
	}
	resp, ok := tc.Audit.Response(requestID)
	if !ok {
		return fmt.Errorf("response for %s was not recorded", tc.LastRequestID)
	}
	if resp.StatusCode != status {
		return fmt.Errorf("expected audited status %d but got %d", status, resp.StatusCode)
	}
	return nil
}

func (s *steps) noAuditRecords(context.Context) error {
	tc := s.current()
	if n := len(tc.Audit.Requests()); n != 0 {
		return fmt.Errorf("expected no audit records but found %d", n)
	}
	if n := tc.Audit.ResponseCount(); n != 0 {
		return fmt.Errorf("expected no audit responses but found %d", n)
	}
	return nil
}
