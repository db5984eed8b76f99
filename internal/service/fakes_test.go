package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ─── Accounts ───────────────────────────────────────────────────────────

type fakeAccounts struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*model.Account
	saves  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{nextID: 1, byID: map[int]*model.Account{}}
}

func cloneAccount(a *model.Account) *model.Account {
	c := *a
	switch p := a.Profile.(type) {
	case *model.MentorProfile:
		cp := *p
		c.Profile = &cp
	case *model.StudentProfile:
		cp := *p
		c.Profile = &cp
	case *model.AdminProfile:
		c.Profile = &model.AdminProfile{}
	}
	if a.EmailOTP != nil {
		code := *a.EmailOTP
		c.EmailOTP = &code
	}
	if a.OTPCreatedAt != nil {
		t := *a.OTPCreatedAt
		c.OTPCreatedAt = &t
	}
	return &c
}

func (f *fakeAccounts) GetByID(_ context.Context, id int) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, a := range f.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) ListActiveByRole(_ context.Context, role model.Role) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Account
	for _, a := range f.byID {
		if a.Role() == role && a.IsActive {
			out = append(out, *cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	a.ID = f.nextID
	f.nextID++
	a.CreatedAt = time.Now()
	f.byID[a.ID] = cloneAccount(a)
	return nil
}

func (f *fakeAccounts) SaveAuthState(_ context.Context, a *model.Account) error {
	return f.put(a)
}

func (f *fakeAccounts) SaveMentorApplication(_ context.Context, a *model.Account) error {
	return f.put(a)
}

func (f *fakeAccounts) put(a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[a.ID] = cloneAccount(a)
	f.saves++
	return nil
}

func (f *fakeAccounts) SetActive(_ context.Context, id int, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsActive = active
	return nil
}

func (f *fakeAccounts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// seed inserts an account with a known password.
func (f *fakeAccounts) seed(t *testing.T, email, password string, active bool, profile model.Profile) *model.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a := &model.Account{
		Email:        model.NormalizeEmail(email),
		PasswordHash: string(hash),
		IsActive:     active,
		FirstName:    "Test",
		LastName:     "User",
		Profile:      profile,
	}
	if err := f.Create(context.Background(), a); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

// ─── Sessions ───────────────────────────────────────────────────────────

type fakeSessions struct {
	mu      sync.Mutex
	refresh map[string]int
	grants  map[int]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refresh: map[string]int{}, grants: map[int]bool{}}
}

func (f *fakeSessions) StoreRefresh(_ context.Context, jti string, accountID int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[jti] = accountID
	return nil
}

func (f *fakeSessions) ConsumeRefresh(_ context.Context, jti string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.refresh[jti]
	if !ok {
		return 0, repository.ErrNotFound
	}
	delete(f.refresh, jti)
	return id, nil
}

func (f *fakeSessions) RevokeAllRefresh(_ context.Context, accountID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for jti, id := range f.refresh {
		if id == accountID {
			delete(f.refresh, jti)
		}
	}
	return nil
}

func (f *fakeSessions) GrantPasswordReset(_ context.Context, accountID int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[accountID] = true
	return nil
}

func (f *fakeSessions) ConsumePasswordResetGrant(_ context.Context, accountID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok := f.grants[accountID]
	delete(f.grants, accountID)
	return ok, nil
}

// ─── Notifier ───────────────────────────────────────────────────────────

type sentMail struct {
	Kind    string
	To      string
	Payload string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeNotifier) record(kind, to, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Kind: kind, To: to, Payload: payload})
	return nil
}

func (f *fakeNotifier) SendOTP(_ context.Context, to, _, code string, _ model.OTPPurpose) error {
	return f.record("otp", to, code)
}

func (f *fakeNotifier) SendMentorApplication(_ context.Context, to, _ string) error {
	return f.record("mentor_application", to, "")
}

func (f *fakeNotifier) SendStudentWelcome(_ context.Context, to, _, password string) error {
	return f.record("student_welcome", to, password)
}

func (f *fakeNotifier) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return f.sent[len(f.sent)-1]
}

// ─── Pairings ───────────────────────────────────────────────────────────

type fakePairings struct {
	accounts *fakeAccounts
	links    []model.Pairing
}

func (f *fakePairings) ListStudentsOf(ctx context.Context, mentorID int) ([]model.Account, error) {
	var out []model.Account
	for _, l := range f.links {
		if l.MentorID == mentorID {
			a, err := f.accounts.GetByID(ctx, l.StudentID)
			if err != nil {
				return nil, err
			}
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakePairings) ListMentorsOf(ctx context.Context, studentID int) ([]model.Account, error) {
	var out []model.Account
	for _, l := range f.links {
		if l.StudentID == studentID {
			a, err := f.accounts.GetByID(ctx, l.MentorID)
			if err != nil {
				return nil, err
			}
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakePairings) Create(_ context.Context, mentorID, studentID int) (*model.Pairing, error) {
	for _, l := range f.links {
		if l.MentorID == mentorID && l.StudentID == studentID {
			return nil, repository.ErrDuplicatePairing
		}
	}
	p := model.Pairing{ID: len(f.links) + 1, MentorID: mentorID, StudentID: studentID, CreatedAt: time.Now()}
	f.links = append(f.links, p)
	return &p, nil
}

func (f *fakePairings) Delete(_ context.Context, mentorID, studentID int) error {
	for i, l := range f.links {
		if l.MentorID == mentorID && l.StudentID == studentID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Catalog ────────────────────────────────────────────────────────────

type fakeCourses struct {
	items map[int]*model.Course
	next  int
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{items: map[int]*model.Course{}, next: 1}
}

func (f *fakeCourses) List(_ context.Context, includeInactive bool) ([]model.Course, error) {
	var out []model.Course
	for id := 1; id < f.next; id++ {
		c, ok := f.items[id]
		if !ok || (!includeInactive && c.Status != model.StatusActive) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCourses) GetByID(_ context.Context, id int) (*model.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) slugTaken(slug string, except int) bool {
	for _, c := range f.items {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	if f.slugTaken(c.Slug, 0) {
		return repository.ErrDuplicateSlug
	}
	c.ID = f.next
	f.next++
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *model.Course) error {
	if _, ok := f.items[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if f.slugTaken(c.Slug, c.ID) {
		return repository.ErrDuplicateSlug
	}
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCourses) SetStatus(_ context.Context, id int, status model.ContentStatus) error {
	c, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	return nil
}

type fakeVideos struct {
	items   map[int]*model.Video
	next    int
	failNew bool
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{items: map[int]*model.Video{}, next: 1}
}

// List returns matches in id order so ordering is left to the service.
func (f *fakeVideos) List(_ context.Context, flt repository.VideoFilter) ([]model.Video, error) {
	var out []model.Video
	for id := 1; id < f.next; id++ {
		v, ok := f.items[id]
		if !ok {
			continue
		}
		if !flt.IncludeInactive && v.Status != model.StatusActive {
			continue
		}
		if flt.CourseID != nil && (v.CourseID == nil || *v.CourseID != *flt.CourseID) {
			continue
		}
		if flt.UploaderID != nil && v.UploaderID != *flt.UploaderID {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeVideos) GetByID(_ context.Context, id int) (*model.Video, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) Create(_ context.Context, v *model.Video) error {
	if f.failNew {
		return errors.New("insert failed")
	}
	v.ID = f.next
	f.next++
	if v.UploadedAt.IsZero() {
		v.UploadedAt = time.Now()
	}
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVideos) Update(_ context.Context, v *model.Video) error {
	if _, ok := f.items[v.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVideos) SetStatus(_ context.Context, id int, status model.ContentStatus) error {
	v, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Status = status
	return nil
}

// ─── Bridge ─────────────────────────────────────────────────────────────

type fakeBridge struct {
	err      error
	messages map[string][]model.ChatMessage
	uid      string
	claims   map[string]interface{}
}

func (f *fakeBridge) AppendMessage(_ context.Context, chatID string, msg model.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	if f.messages == nil {
		f.messages = map[string][]model.ChatMessage{}
	}
	f.messages[chatID] = append(f.messages[chatID], msg)
	return nil
}

func (f *fakeBridge) CustomToken(_ context.Context, uid string, claims map[string]interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uid = uid
	f.claims = claims
	return "token-for-" + uid, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────

type clock struct{ t time.Time }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testLogger() zerolog.Logger { return zerolog.Nop() }

func testHasher() *PasswordHasher { return NewPasswordHasher(bcrypt.MinCost) }

func ptr[T any](v T) *T { return &v }

// sizedHeader fakes an upload of the given size without a body.
func sizedHeader(filename, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
		Size:     size,
	}
}

// fileHeader builds a real multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File[field][0]
}
