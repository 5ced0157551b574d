package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/earnings"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/files"
	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/leaderboard"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

type testEnv struct {
	t      *testing.T
	store  *store.Store
	fs     afero.Fs
	issuer *auth.Issuer
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	fs := afero.NewMemMapFs()
	iss := auth.NewIssuer("test-secret", time.Hour)
	h := New(s, earnings.New(s), leaderboard.New(s, nil), files.New(fs, "/uploads"), iss, Config{MaxUploadBytes: 1 << 20})

	r := chi.NewRouter()
	r.Use(appI18n.Middleware)
	h.Routes(r)
	return &testEnv{t: t, store: s, fs: fs, issuer: iss, router: r}
}

func (e *testEnv) token(role model.Role, subjectID string) string {
	e.t.Helper()
	tok, _, err := e.issuer.Issue(model.Account{ID: "acct-" + subjectID, Role: role, SubjectID: subjectID})
	if err != nil {
		e.t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) submit(token, taskID, content, fileName, fileBody string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("taskId", taskID)
	_ = mw.WriteField("content", content)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			e.t.Fatalf("create form file: %v", err)
		}
		_, _ = io.WriteString(fw, fileBody)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/taskSubmission/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(req, token)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

// seed creates a teacher owning one batch with one enrolled student.
func (e *testEnv) seed() (teacher model.Teacher, student model.Student, batch model.Batch) {
	e.t.Helper()
	ctx := context.Background()
	var err error
	teacher, err = e.store.CreateTeacher(ctx, model.Teacher{Name: "Tara"})
	if err != nil {
		e.t.Fatalf("create teacher: %v", err)
	}
	student, err = e.store.CreateStudent(ctx, model.Student{Name: "Sam"})
	if err != nil {
		e.t.Fatalf("create student: %v", err)
	}
	_, err = e.store.Roster(ctx, func(g *roster.Graph) error {
		batch, err = g.CreateBatch(model.Batch{
			BatchName: "Alpha",
			Teacher:   teacher.ID,
			Students:  []string{student.ID},
			StartDate: time.Now(),
			EndDate:   time.Now().AddDate(0, 1, 0),
		})
		return err
	})
	if err != nil {
		e.t.Fatalf("create batch: %v", err)
	}
	return teacher, student, batch
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "Ana@Example.com", "password": "password1",
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "password1",
	})
	expectStatus(t, rec, http.StatusOK)
	tok := decodeBody[tokenResponse](t, rec)
	if tok.Role != model.RoleStudent || tok.SubjectID == "" {
		t.Fatalf("token response = %+v", tok)
	}

	rec = env.do(http.MethodGet, "/api/auth/me", tok.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	me := decodeBody[struct {
		Profile model.Student `json:"profile"`
	}](t, rec)
	if me.Profile.Name != "Ana" || me.Profile.NationalRank != 1 {
		t.Errorf("profile = %+v", me.Profile)
	}

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "password1",
	})
	expectStatus(t, rec, http.StatusConflict)
}

func TestAuthAndRoleGating(t *testing.T) {
	env := newTestEnv(t)
	_, student, _ := env.seed()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusUnauthorized},
		{"student", env.token(model.RoleStudent, student.ID), http.StatusForbidden},
		{"teacher", env.token(model.RoleTeacher, "t"), http.StatusOK},
		{"admin", env.token(model.RoleAdmin, "a"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/students", tt.token, nil)
			expectStatus(t, rec, tt.want)
			if tt.want != http.StatusOK {
				body := decodeBody[errorResponse](t, rec)
				if body.Message == "" {
					t.Error("expected an error message")
				}
			}
		})
	}
}

func TestValidationAndIDErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(model.RoleAdmin, "a")

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "x", "email": "nope", "password": "short"})
	expectStatus(t, rec, http.StatusBadRequest)
	body := decodeBody[errorResponse](t, rec)
	if body.Fields["email"] != "email" || body.Fields["password"] != "min=8" {
		t.Errorf("fields = %v", body.Fields)
	}

	rec = env.do(http.MethodGet, "/api/students/not-an-id", admin, nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodGet, "/api/students/5d1f3c52-8c3a-4c55-9d0e-4b1f0b0b4c11", admin, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(http.MethodGet, "/api/admin/earnings?timeRange=decade", admin, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestBatchLifecycleKeepsReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.token(model.RoleAdmin, "a")
	teacher, student, _ := env.seed()
	other, err := env.store.CreateStudent(ctx, model.Student{Name: "Zed"})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	rec := env.do(http.MethodPost, "/api/batches", admin, map[string]any{
		"batchName":      "Beta",
		"teacher":        teacher.ID,
		"students":       []string{other.ID},
		"startDate":      time.Now(),
		"endDate":        time.Now().AddDate(0, 2, 0),
		"sessionTime":    "18:30",
		"defaultRevenue": 5000,
	})
	expectStatus(t, rec, http.StatusCreated)
	beta := decodeBody[model.Batch](t, rec)

	rec = env.do(http.MethodPost, "/api/batches/"+beta.ID+"/students", admin, map[string]string{"studentId": student.ID})
	expectStatus(t, rec, http.StatusOK)

	st, _ := env.store.GetStudent(ctx, student.ID)
	if len(st.Batches) != 2 {
		t.Errorf("student batches = %v, want 2", st.Batches)
	}
	tch, _ := env.store.GetTeacher(ctx, teacher.ID)
	if tch.TotalBatches != 2 || tch.TotalStudents != 2 {
		t.Errorf("teacher counters = %d batches, %d students", tch.TotalBatches, tch.TotalStudents)
	}

	rec = env.do(http.MethodDelete, "/api/batches/"+beta.ID, admin, nil)
	expectStatus(t, rec, http.StatusOK)

	st, _ = env.store.GetStudent(ctx, other.ID)
	if len(st.Batches) != 0 || len(st.Teachers) != 0 {
		t.Errorf("deleted batch still referenced: %+v", st)
	}
	tch, _ = env.store.GetTeacher(ctx, teacher.ID)
	if tch.TotalBatches != 1 || tch.TotalStudents != 1 {
		t.Errorf("teacher counters after delete = %d batches, %d students", tch.TotalBatches, tch.TotalStudents)
	}

	rec = env.do(http.MethodPost, "/api/batches", admin, map[string]any{
		"batchName": "Bad",
		"startDate": time.Now(),
		"endDate":   time.Now().AddDate(0, 0, -1),
	})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSubmissionReviewAndPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher, student, batch := env.seed()
	studentTok := env.token(model.RoleStudent, student.ID)
	mentor := env.token(model.RoleTeacher, teacher.ID)

	task, err := env.store.CreateTask(ctx, model.Task{BatchID: batch.ID, Title: "Pitch", DueDate: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	rec := env.do(http.MethodGet, "/api/tasks/mine", studentTok, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decodeBody[[]myTask](t, rec)
	if len(mine) != 1 || mine[0].EffectiveStatus != "overdue" {
		t.Fatalf("my tasks = %+v", mine)
	}

	rec = env.submit(studentTok, task.ID, "first try", "deck.pdf", "v1")
	expectStatus(t, rec, http.StatusCreated)
	first := decodeBody[model.Submission](t, rec)
	if first.FileURL == "" {
		t.Fatal("expected an attachment url")
	}

	rec = env.submit(studentTok, task.ID, "second try", "deck.pdf", "v2")
	expectStatus(t, rec, http.StatusCreated)
	second := decodeBody[model.Submission](t, rec)
	if second.ID != first.ID {
		t.Errorf("resubmission created a new record: %s != %s", second.ID, first.ID)
	}
	if ok, _ := afero.Exists(env.fs, "/"+strings.TrimPrefix(first.FileURL, "/uploads/")); ok {
		t.Error("replaced attachment was not deleted")
	}

	subs, _ := env.store.ListSubmissionsByTask(ctx, task.ID)
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}

	points := func() int {
		st, err := env.store.GetStudent(ctx, student.ID)
		if err != nil {
			t.Fatalf("get student: %v", err)
		}
		return st.Points
	}

	rec = env.do(http.MethodPut, "/api/taskSubmission/"+first.ID, mentor, map[string]any{"status": "approved", "points": 10})
	expectStatus(t, rec, http.StatusOK)
	if got := points(); got != 10 {
		t.Errorf("points after approve = %d, want 10", got)
	}

	rec = env.do(http.MethodPut, "/api/taskSubmission/"+first.ID, mentor, map[string]any{"status": "approved"})
	expectStatus(t, rec, http.StatusOK)
	if got := points(); got != 10 {
		t.Errorf("points after re-approve = %d, want 10", got)
	}

	rec = env.submit(studentTok, task.ID, "third try", "", "")
	expectStatus(t, rec, http.StatusConflict)

	rec = env.do(http.MethodGet, "/api/tasks/mine", studentTok, nil)
	mine = decodeBody[[]myTask](t, rec)
	if mine[0].EffectiveStatus != "completed" {
		t.Errorf("effective status = %s, want completed", mine[0].EffectiveStatus)
	}

	rec = env.do(http.MethodPut, "/api/taskSubmission/"+first.ID, mentor, map[string]any{"status": "rejected", "feedback": "redo"})
	expectStatus(t, rec, http.StatusOK)
	if got := points(); got != 0 {
		t.Errorf("points after revoke = %d, want 0", got)
	}

	rec = env.do(http.MethodPut, "/api/taskSubmission/"+first.ID, mentor, map[string]any{"status": "approved", "points": -3})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _, batch := env.seed()
	outsider, _ := env.store.CreateStudent(ctx, model.Student{Name: "Out"})
	task, _ := env.store.CreateTask(ctx, model.Task{BatchID: batch.ID, Title: "T", DueDate: time.Now()})

	rec := env.submit(env.token(model.RoleStudent, outsider.ID), task.ID, "hi", "", "")
	expectStatus(t, rec, http.StatusForbidden)
}

func TestSaleFlowsIntoTeacherEarnings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher, student, batch := env.seed()
	studentTok := env.token(model.RoleStudent, student.ID)

	rec := env.do(http.MethodPost, "/api/sales", studentTok, map[string]any{"product": "Kit", "customer": "Bo", "amount": 100})
	expectStatus(t, rec, http.StatusCreated)
	sale := decodeBody[model.Sale](t, rec)
	if sale.BatchID != batch.ID || sale.Status != model.SaleCompleted {
		t.Errorf("sale = %+v", sale)
	}

	rec = env.do(http.MethodGet, "/api/earnings/teacher/"+teacher.ID, env.token(model.RoleTeacher, teacher.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	report := decodeBody[earnings.TeacherReport](t, rec)
	if !report.TotalEarnings.Equal(decimal.NewFromInt(20)) {
		t.Errorf("totalEarnings = %s, want 20", report.TotalEarnings)
	}
	if len(report.DailyTransactions) != 1 || !report.DailyTransactions[0].Commission.Equal(decimal.NewFromInt(20)) {
		t.Errorf("transactions = %+v", report.DailyTransactions)
	}

	rec = env.do(http.MethodGet, "/api/earnings/teacher/"+teacher.ID, env.token(model.RoleTeacher, "5d1f3c52-8c3a-4c55-9d0e-4b1f0b0b4c11"), nil)
	expectStatus(t, rec, http.StatusForbidden)

	st, _ := env.store.GetStudent(ctx, student.ID)
	if !st.Earning.Equal(decimal.NewFromInt(60)) {
		t.Errorf("student earning = %s, want 60", st.Earning)
	}

	rec = env.do(http.MethodGet, "/api/sales/stats", studentTok, nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decodeBody[salesStats](t, rec)
	if stats.TotalSales != 1 || len(stats.Daily) != 30 || len(stats.Monthly) != 12 {
		t.Errorf("stats = %d sales, %d daily, %d monthly", stats.TotalSales, len(stats.Daily), len(stats.Monthly))
	}

	admin := env.token(model.RoleAdmin, "a")
	rec = env.do(http.MethodPut, "/api/sales/"+sale.ID, admin, map[string]string{"status": "cancelled"})
	expectStatus(t, rec, http.StatusOK)
	st, _ = env.store.GetStudent(ctx, student.ID)
	if !st.Earning.IsZero() {
		t.Errorf("student earning after cancel = %s, want 0", st.Earning)
	}

	rec = env.do(http.MethodGet, "/api/batches", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	batches := decodeBody[[]model.Batch](t, rec)
	if len(batches) != 1 || !batches[0].Revenue.IsZero() {
		t.Errorf("batches = %+v", batches)
	}

	rec = env.do(http.MethodGet, "/api/admin/earnings?timeRange=7days", admin, nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestFeedbackAndReviews(t *testing.T) {
	env := newTestEnv(t)
	_, student, batch := env.seed()
	studentTok := env.token(model.RoleStudent, student.ID)

	rec := env.do(http.MethodPost, "/api/feedback", studentTok, map[string]string{"subject": "Hi", "message": "Great"})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(http.MethodGet, "/api/feedback/mine", studentTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decodeBody[[]model.Feedback](t, rec); len(list) != 1 {
		t.Errorf("feedback = %+v", list)
	}

	rec = env.do(http.MethodPost, "/api/batches/"+batch.ID+"/reviews", studentTok, map[string]any{"rating": 6})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPost, "/api/batches/"+batch.ID+"/reviews", studentTok, map[string]any{"rating": 5, "comment": "Nice"})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(http.MethodGet, "/api/batches/"+batch.ID+"/reviews", studentTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decodeBody[[]model.BatchReview](t, rec); len(list) != 1 || list[0].Rating != 5 {
		t.Errorf("reviews = %+v", list)
	}
}

func TestLeaderboardRoutes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, student, batch := env.seed()
	if err := env.store.AddStudentPoints(ctx, student.ID, 7); err != nil {
		t.Fatalf("add points: %v", err)
	}
	staff := env.token(model.RoleTeacher, "t")

	rec := env.do(http.MethodGet, "/api/students/leaderboard/calculate", staff, nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody[map[string]any](t, rec)
	if body["message"] != "Ranked 1 student" {
		t.Errorf("message = %v", body["message"])
	}

	rec = env.do(http.MethodGet, "/api/students/leaderboard/batch/"+batch.ID, staff, nil)
	expectStatus(t, rec, http.StatusOK)
	entries := decodeBody[[]leaderboard.Entry](t, rec)
	if len(entries) != 1 || entries[0].Points != 7 || entries[0].Rank != 1 {
		t.Errorf("batch board = %+v", entries)
	}

	rec = env.do(http.MethodGet, "/api/students/leaderboard/national?limit=0", staff, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestGetBatchShowsLiveRevenue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, student, batch := env.seed()
	admin := env.token(model.RoleAdmin, "a")

	rec := env.do(http.MethodPut, "/api/batches/"+batch.ID, admin, map[string]any{"defaultRevenue": 5000})
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(http.MethodPost, "/api/sales", env.token(model.RoleStudent, student.ID), map[string]any{"product": "Kit", "customer": "Bo", "amount": 100})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(http.MethodGet, "/api/batches/"+batch.ID, admin, nil)
	expectStatus(t, rec, http.StatusOK)
	got := decodeBody[model.Batch](t, rec)
	if !got.Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("revenue = %s, want 100", got.Revenue)
	}
	if !got.TargetRevenue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("defaultRevenue = %s, want 5000", got.TargetRevenue)
	}

	stored, err := env.store.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if !stored.TargetRevenue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("stored defaultRevenue = %s, want 5000", stored.TargetRevenue)
	}
}

func TestUploadsRequireAuthAndHideListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, student, batch := env.seed()
	studentTok := env.token(model.RoleStudent, student.ID)
	task, err := env.store.CreateTask(ctx, model.Task{BatchID: batch.ID, Title: "Pitch", DueDate: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	rec := env.submit(studentTok, task.ID, "deck", "deck.pdf", "slides")
	expectStatus(t, rec, http.StatusCreated)
	sub := decodeBody[model.Submission](t, rec)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"file without token", sub.FileURL, "", http.StatusUnauthorized},
		{"listing without token", "/uploads/", "", http.StatusUnauthorized},
		{"file with token", sub.FileURL, studentTok, http.StatusOK},
		{"listing with token", "/uploads/", studentTok, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.path, tt.token, nil)
			expectStatus(t, rec, tt.want)
			if tt.want == http.StatusOK && rec.Body.String() != "slides" {
				t.Errorf("body = %q", rec.Body.String())
			}
			if tt.want != http.StatusOK && strings.Contains(rec.Body.String(), "deck.pdf") {
				t.Errorf("response leaks file names: %q", rec.Body.String())
			}
		})
	}
}

func TestDeleteBatchRemovesTasksAndPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher, student, batch := env.seed()
	studentTok := env.token(model.RoleStudent, student.ID)
	task, err := env.store.CreateTask(ctx, model.Task{BatchID: batch.ID, Title: "Pitch", DueDate: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	rec := env.submit(studentTok, task.ID, "deck", "deck.pdf", "slides")
	expectStatus(t, rec, http.StatusCreated)
	sub := decodeBody[model.Submission](t, rec)

	mentor := env.token(model.RoleTeacher, teacher.ID)
	rec = env.do(http.MethodPut, "/api/taskSubmission/"+sub.ID, mentor, map[string]any{"status": "approved", "points": 10})
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(http.MethodDelete, "/api/batches/"+batch.ID, mentor, nil)
	expectStatus(t, rec, http.StatusOK)

	if _, err := env.store.GetTask(ctx, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("task after batch delete = %v, want ErrNotFound", err)
	}
	if _, err := env.store.GetSubmission(ctx, sub.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("submission after batch delete = %v, want ErrNotFound", err)
	}
	st, _ := env.store.GetStudent(ctx, student.ID)
	if st.Points != 0 {
		t.Errorf("points after batch delete = %d, want 0", st.Points)
	}
	if ok, _ := afero.Exists(env.fs, "/"+strings.TrimPrefix(sub.FileURL, "/uploads/")); ok {
		t.Error("attachment of deleted batch was not removed")
	}
}

func TestProfileEmailChangeMovesLogin(t *testing.T) {
	env := newTestEnv(t)
	login := func(email string) int {
		rec := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password1"})
		return rec.Code
	}

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "password1",
	})
	expectStatus(t, rec, http.StatusCreated)
	ana := decodeBody[tokenResponse](t, rec)

	rec = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ben", "email": "ben@example.com", "password": "password1",
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(http.MethodPut, "/api/students/"+ana.SubjectID, ana.Token, map[string]string{"email": "Ana.New@Example.com"})
	expectStatus(t, rec, http.StatusOK)

	if code := login("ana.new@example.com"); code != http.StatusOK {
		t.Errorf("login with new email = %d, want 200", code)
	}
	if code := login("ana@example.com"); code != http.StatusUnauthorized {
		t.Errorf("login with old email = %d, want 401", code)
	}

	rec = env.do(http.MethodPut, "/api/students/"+ana.SubjectID, ana.Token, map[string]string{"email": "ben@example.com", "name": "Taken"})
	expectStatus(t, rec, http.StatusConflict)
	st, _ := env.store.GetStudent(context.Background(), ana.SubjectID)
	if st.Name != "Ana" {
		t.Errorf("profile changed despite conflict: %+v", st)
	}
}

func TestTaskStatusRejectsOverdue(t *testing.T) {
	env := newTestEnv(t)
	_, _, batch := env.seed()
	staff := env.token(model.RoleTeacher, "t")
	task, err := env.store.CreateTask(context.Background(), model.Task{BatchID: batch.ID, Title: "Pitch", DueDate: time.Now()})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	rec := env.do(http.MethodPut, "/api/tasks/"+task.ID, staff, map[string]string{"status": "overdue"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorResponse](t, rec); body.Fields["status"] == "" {
		t.Errorf("fields = %v, want a status error", body.Fields)
	}

	rec = env.do(http.MethodPut, "/api/tasks/"+task.ID, staff, map[string]string{"status": "completed"})
	expectStatus(t, rec, http.StatusOK)
}
