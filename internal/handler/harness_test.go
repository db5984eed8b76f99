package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/gsmp/mentorship-backend/internal/validator"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testBaseURL = "https://api.example.com"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type harness struct {
	engine    *gin.Engine
	accounts  *fakeAccounts
	sessions  *fakeSessions
	mail      *fakeNotifier
	pairings  *fakePairings
	courses   *fakeCourses
	videos    *fakeVideos
	bridge    *fakeBridge
	tokens    *service.TokenService
	uploadDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()

	h := &harness{
		accounts:  newFakeAccounts(),
		sessions:  newFakeSessions(),
		mail:      &fakeNotifier{},
		courses:   newFakeCourses(),
		videos:    newFakeVideos(),
		bridge:    &fakeBridge{},
		uploadDir: t.TempDir(),
	}
	h.pairings = &fakePairings{accounts: h.accounts}

	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	creator := service.NewAccountService(h.accounts, hasher, log)
	h.tokens = service.NewTokenService("handler-secret", 30*time.Minute, 7*24*time.Hour, h.sessions)
	auth := service.NewAuthService(h.accounts, creator, hasher, service.NewOTPIssuer(), h.tokens, h.sessions, h.mail, false, log)
	media := service.NewMediaService(h.uploadDir, 10<<20)
	urls := MediaURLs{BaseURL: testBaseURL}

	authH := NewAuthHandler(auth, nil, log)
	regH := NewRegistrationHandler(service.NewRegistrationService(h.accounts, creator, hasher, media, h.mail, log), urls, log)
	userH := NewUserHandler(creator, service.NewPairingService(h.accounts, h.pairings, log), urls, log)
	msgH := NewMessageHandler(service.NewMessagingService(h.bridge, log), log)
	courseH := NewCourseHandler(service.NewCourseService(h.courses, h.videos, media, log), urls, log)
	videoH := NewVideoHandler(service.NewVideoService(h.videos, h.courses, media, log), urls, log)
	importH := NewImportHandler(service.NewStudentImportService(h.accounts, creator, h.mail, log), log)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	api := r.Group("/api/v1")
	api.POST("/register/mentor", regH.RegisterMentor)
	api.POST("/login", authH.Login)
	api.POST("/send-otp", authH.SendOTP)
	api.POST("/verify-otp", authH.VerifyOTP)
	api.POST("/password-reset", authH.ResetPassword)
	api.POST("/token/refresh", authH.Refresh)
	api.POST("/logout", authH.Logout)

	authed := api.Group("", middleware.RequireAuth(h.tokens), middleware.LoadAccount(h.accounts, zerolog.Nop()))
	authed.GET("/me", authH.Me)
	authed.GET("/students", userH.ListStudents)
	authed.GET("/pairings", userH.ListPairings)
	authed.GET("/users/:id", userH.GetUser)
	authed.POST("/send-message", msgH.SendMessage)
	authed.GET("/firebase-token", msgH.FirebaseToken)

	authed.GET("/courses", courseH.List)
	authed.POST("/courses", courseH.Create)
	authed.GET("/courses/:id", courseH.Get)
	authed.PUT("/courses/:id", courseH.Replace)
	authed.PATCH("/courses/:id", courseH.Patch)
	authed.DELETE("/courses/:id", courseH.Delete)
	authed.POST("/courses/:id/toggle-active", courseH.ToggleActive)
	authed.GET("/courses/:id/videos", courseH.Videos)

	authed.GET("/videos", videoH.List)
	authed.POST("/videos", videoH.Upload)
	authed.GET("/videos/mine", videoH.Mine)
	authed.GET("/videos/by-course", videoH.ByCourse)
	authed.GET("/videos/:id", videoH.Get)
	authed.PATCH("/videos/:id", videoH.Patch)
	authed.DELETE("/videos/:id", videoH.Delete)
	authed.POST("/videos/:id/toggle-active", videoH.ToggleActive)

	admin := authed.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/pairings", userH.CreatePairing)
	admin.DELETE("/pairings", userH.DeletePairing)
	admin.POST("/accounts/:id/activate", userH.ActivateAccount)
	admin.POST("/students/import", importH.ImportStudents)

	h.engine = r
	return h
}

// token returns an access token for a stored account.
func (h *harness) token(t *testing.T, a *model.Account) string {
	t.Helper()
	pair, err := h.tokens.IssuePair(context.Background(), a)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return pair.Access
}

func (h *harness) stored(t *testing.T, email string) *model.Account {
	t.Helper()
	a, err := h.accounts.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("load %s: %v", email, err)
	}
	return a
}

func (h *harness) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return h.do(t, method, path, token, body, "application/json")
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, status int, data interface{}) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code response.ErrCode) envelope {
	t.Helper()
	env := decode(t, rec, status, nil)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error %s, got %s", code, rec.Body.String())
	}
	return env
}

type formFile struct {
	field, filename, contentType string
	content                      []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func (h *harness) seedAdmin(t *testing.T) *model.Account {
	return h.accounts.seed(t, "admin@example.com", "AdminPass1!", true, &model.AdminProfile{})
}

func hasPrefix(s *string, prefix string) bool {
	return s != nil && strings.HasPrefix(*s, prefix)
}
