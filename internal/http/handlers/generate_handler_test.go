package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/roske22/write-wiz/internal/domain"
	"github.com/roske22/write-wiz/internal/services"
)

type stubGenSvc struct {
	text string
	err  error

	calls    int
	lastUser string
	lastTier domain.Tier
	lastReq  domain.GenerationRequest
}

func (s *stubGenSvc) Generate(ctx context.Context, userID string, tier domain.Tier, req domain.GenerationRequest) (string, error) {
	s.calls++
	s.lastUser = userID
	s.lastTier = tier
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubUsageSvc struct {
	summary services.UsageSummary
	err     error
}

func (s *stubUsageSvc) Usage(ctx context.Context, userID string, tier domain.Tier) (services.UsageSummary, error) {
	return s.summary, s.err
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate", h.Generate)
	r.GET("/usage", h.Usage)
	return r
}

func postGenerate(t *testing.T, r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"messageType":"email","isReply":false,"userPrompt":"thank the customer","tone":"professional"}`

func TestGenerate_OK(t *testing.T) {
	svc := &stubGenSvc{text: "Dear customer, thank you."}
	r := newTestRouter(New(svc, &stubUsageSvc{}, nil, 0))

	w := postGenerate(t, r, validBody, map[string]string{"X-User-ID": "alice", "X-User-Tier": "free"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Dear customer, thank you." {
		t.Fatalf("message = %q", resp.Message)
	}
	if svc.lastUser != "alice" || svc.lastTier != domain.TierFree {
		t.Fatalf("identity passed = (%q, %q)", svc.lastUser, svc.lastTier)
	}
	if svc.lastReq.MessageType != domain.MessageTypeEmail || svc.lastReq.Tone != domain.ToneProfessional {
		t.Fatalf("bound request = %+v", svc.lastReq)
	}
}

func TestGenerate_MalformedJSON(t *testing.T) {
	svc := &stubGenSvc{}
	r := newTestRouter(New(svc, &stubUsageSvc{}, nil, 0))

	w := postGenerate(t, r, `{"messageType":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.calls != 0 {
		t.Fatal("service must not run on malformed JSON")
	}
}

func TestGenerate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid message type", services.ErrInvalidMessageType, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"empty prompt", services.ErrEmptyPrompt, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"invalid tone", services.ErrInvalidTone, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"invalid style", services.ErrInvalidStyle, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"quota exceeded", services.ErrQuotaExceeded, http.StatusTooManyRequests, ErrCodeQuotaExceeded},
		{"quota unavailable", services.ErrQuotaUnavailable, http.StatusServiceUnavailable, ErrCodeQuotaUnavailable},
		{"upstream failure", services.ErrUpstream, http.StatusBadGateway, ErrCodeUpstream},
		{"unknown failure", context.DeadlineExceeded, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(New(&stubGenSvc{err: tc.err}, &stubUsageSvc{}, nil, 0))

			w := postGenerate(t, r, validBody, nil)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("code = %q; want %q", resp.Code, tc.wantCode)
			}
			if resp.Message == "" {
				t.Fatal("error message must not be empty")
			}
		})
	}
}

func TestGenerate_DefaultIdentity(t *testing.T) {
	svc := &stubGenSvc{text: "hi"}
	r := newTestRouter(New(svc, &stubUsageSvc{}, nil, 0))

	w := postGenerate(t, r, validBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastUser != "demo-user" {
		t.Fatalf("fallback user = %q", svc.lastUser)
	}
	if svc.lastTier != domain.TierFree {
		t.Fatalf("fallback tier = %q", svc.lastTier)
	}
}

func TestGenerate_UnknownTierDefaultsToFree(t *testing.T) {
	svc := &stubGenSvc{text: "hi"}
	r := newTestRouter(New(svc, &stubUsageSvc{}, nil, 0))

	postGenerate(t, r, validBody, map[string]string{"X-User-Tier": "platinum"})
	if svc.lastTier != domain.TierFree {
		t.Fatalf("tier = %q; unknown tiers must resolve to free", svc.lastTier)
	}
}

func TestUsage_OK(t *testing.T) {
	usage := &stubUsageSvc{summary: services.UsageSummary{
		MessagesUsed:      2,
		MessagesRemaining: 1,
	}}
	r := newTestRouter(New(&stubGenSvc{}, usage, nil, 0))

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got services.UsageSummary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MessagesUsed != 2 || got.MessagesRemaining != 1 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestUsage_StoreFailure(t *testing.T) {
	usage := &stubUsageSvc{err: services.ErrQuotaUnavailable}
	r := newTestRouter(New(&stubGenSvc{}, usage, nil, 0))

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
}
