package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"school-health/internal/api/middleware"
	"school-health/internal/dto"
	"school-health/internal/model"
	"school-health/internal/service"
	"school-health/internal/session"
	"school-health/pkg/blob"
	pkgerrors "school-health/pkg/errors"
	"school-health/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
	meResult    *dto.UserResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ int, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ int) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock SchoolService ──

type mockSchoolService struct {
	list      []model.School
	lastQuery string
	err       error
	created   *dto.SchoolRequest
}

func (m *mockSchoolService) List(_ context.Context, _ int, req *dto.SchoolListRequest) ([]model.School, error) {
	m.lastQuery = req.Q
	return m.list, m.err
}
func (m *mockSchoolService) Get(_ context.Context, _, id int) (*model.School, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.School{ID: id}, nil
}
func (m *mockSchoolService) Create(_ context.Context, req *dto.SchoolRequest) (*model.School, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &model.School{ID: 9, Name: req.Name, Level: model.SchoolLevel(req.Level), Location: req.Location}, nil
}
func (m *mockSchoolService) Update(_ context.Context, id int, req *dto.SchoolRequest) (*model.School, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.School{ID: id, Name: req.Name}, nil
}
func (m *mockSchoolService) Delete(_ context.Context, _ int) error { return m.err }

// ── Mock SchoolYearService ──

type mockYearService struct {
	err       error
	created   *dto.SchoolYearRequest
	lockedID  int
	lockedVal bool
}

func (m *mockYearService) List(_ context.Context) ([]model.SchoolYear, error) { return nil, m.err }
func (m *mockYearService) Current(_ context.Context) (*model.SchoolYear, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.SchoolYear{ID: 1, Year: "2024-2025", IsCurrent: true}, nil
}
func (m *mockYearService) Create(_ context.Context, req *dto.SchoolYearRequest) (*model.SchoolYear, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &model.SchoolYear{ID: 3, Year: req.Year}, nil
}
func (m *mockYearService) Rename(_ context.Context, id int, req *dto.SchoolYearRequest) (*model.SchoolYear, error) {
	return &model.SchoolYear{ID: id, Year: req.Year}, m.err
}
func (m *mockYearService) SetCurrent(_ context.Context, _ int) error { return m.err }
func (m *mockYearService) SetLocked(_ context.Context, id int, locked bool) error {
	m.lockedID, m.lockedVal = id, locked
	return m.err
}
func (m *mockYearService) Delete(_ context.Context, _ int) error { return m.err }

// ── Mock FieldService ──

type mockFieldService struct {
	err error
}

func (m *mockFieldService) List(_ context.Context, _ *dto.FieldListRequest) ([]model.DynamicField, error) {
	return nil, m.err
}
func (m *mockFieldService) Create(_ context.Context, req *dto.CreateFieldRequest) (*model.DynamicField, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.DynamicField{ID: "df_x", Tab: model.Tab(req.Tab), Label: req.Label, Type: model.FieldType(req.Type)}, nil
}
func (m *mockFieldService) Update(_ context.Context, id string, _ *dto.UpdateFieldRequest) (*model.DynamicField, error) {
	return &model.DynamicField{ID: id}, m.err
}
func (m *mockFieldService) Delete(_ context.Context, _ string) error { return m.err }

// ── Mock UserService ──

type mockUserService struct {
	err      error
	callerID int
}

func (m *mockUserService) List(_ context.Context) ([]dto.UserResponse, error) { return nil, m.err }
func (m *mockUserService) Get(_ context.Context, id int) (*dto.UserResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UserResponse{ID: id}, nil
}
func (m *mockUserService) Create(_ context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UserResponse{ID: 5, Username: req.Username}, nil
}
func (m *mockUserService) Update(_ context.Context, id int, _ *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: id}, m.err
}
func (m *mockUserService) Delete(_ context.Context, callerID, _ int) error {
	m.callerID = callerID
	return m.err
}

// ── Mock RecordService ──

type mockRecordService struct {
	err        error
	ref        service.RecordRef
	fieldName  string
	fieldValue any
	upload     []byte
	download   *service.Download
}

func (m *mockRecordService) view() *session.View {
	return &session.View{SchoolID: m.ref.SchoolID, SchoolYearID: m.ref.YearID, State: session.Editing}
}
func (m *mockRecordService) View(_ context.Context, ref service.RecordRef) (*session.View, error) {
	m.ref = ref
	return m.view(), m.err
}
func (m *mockRecordService) BeginEdit(_ context.Context, ref service.RecordRef) (*session.View, error) {
	m.ref = ref
	return m.view(), m.err
}
func (m *mockRecordService) SetField(_ context.Context, ref service.RecordRef, name string, value any) (*session.View, error) {
	m.ref, m.fieldName, m.fieldValue = ref, name, value
	return m.view(), m.err
}
func (m *mockRecordService) Attach(_ context.Context, ref service.RecordRef, fieldName, fileName, _ string, r io.Reader) (*model.FileAttachment, *session.View, error) {
	m.ref, m.fieldName = ref, fieldName
	m.upload, _ = io.ReadAll(r)
	if m.err != nil {
		return nil, nil, m.err
	}
	return &model.FileAttachment{ID: "att-1", FileName: fileName, FieldName: fieldName}, m.view(), nil
}
func (m *mockRecordService) RemoveAttachment(_ context.Context, ref service.RecordRef, _ string) (*session.View, error) {
	m.ref = ref
	return m.view(), m.err
}
func (m *mockRecordService) Download(_ context.Context, ref service.RecordRef, _ string) (*service.Download, error) {
	m.ref = ref
	return m.download, m.err
}
func (m *mockRecordService) Save(_ context.Context, ref service.RecordRef) (*session.View, error) {
	m.ref = ref
	if m.err != nil {
		return nil, m.err
	}
	return m.view(), nil
}
func (m *mockRecordService) Cancel(_ context.Context, ref service.RecordRef) (*session.View, error) {
	m.ref = ref
	if m.err != nil {
		return nil, m.err
	}
	return m.view(), nil
}

// ── Mock ReportService / ExportService / DashboardService / SystemService ──

type mockReportService struct {
	err error
}

func (m *mockReportService) Tabular(_ context.Context, _ int, req *dto.TabularReportRequest) (*dto.TabularReport, error) {
	return &dto.TabularReport{Title: req.Tab}, m.err
}
func (m *mockReportService) Compare(_ context.Context, _ int, _ *dto.CompareRequest) (*dto.ComparisonReport, error) {
	return &dto.ComparisonReport{}, m.err
}

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportReport(_ context.Context, _ int, _ *dto.TabularReportRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockDashboardService struct {
	err error
}

func (m *mockDashboardService) Get(_ context.Context, _ int, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.DashboardResponse{YearID: req.YearID}, nil
}

type mockSystemService struct {
	err   error
	calls int
}

func (m *mockSystemService) Reset(_ context.Context, _ int) error {
	m.calls++
	return m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.CtxUserID, 1)
	c.Set(middleware.CtxRole, "admin")
	c.Set(middleware.CtxTokenJTI, "test-jti")
	c.Set(middleware.CtxTokenExp, time.Now().Add(15*time.Minute))
}

// serve 注册单个路由并发送请求；auth 为 true 时注入认证信息
func serve(method, route, target string, body io.Reader, contentType string, auth bool, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	handlers := []gin.HandlerFunc{h}
	if auth {
		handlers = append([]gin.HandlerFunc{setAuth}, handlers...)
	}
	r.Handle(method, route, handlers...)

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("期望 HTTP %d，实际: %d (%s)", status, w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != code {
		t.Errorf("期望业务码 %d，实际: %d", code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "tok", ExpiresIn: 3600}})
	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "admin"}), "application/json", false, h.Login)
	expect(t, w, http.StatusOK, 0)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	w := serve("POST", "/auth/login", "/auth/login", jsonBody(map[string]string{"username": "admin"}), "application/json", false, h.Login)
	expect(t, w, http.StatusBadRequest, 10001)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})
	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "x"}), "application/json", false, h.Login)
	expect(t, w, http.StatusUnauthorized, 11001)
	if resp := parseResponse(w); resp.Message != service.ErrInvalidCredentials.Error() {
		t.Errorf("期望原样返回提示文案，实际: %s", resp.Message)
	}
}

func TestAuthHandler_Login_StateNotLoaded(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: pkgerrors.ErrStateNotLoaded})
	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{Username: "admin", Password: "admin"}), "application/json", false, h.Login)
	expect(t, w, http.StatusServiceUnavailable, 10006)
}

func TestAuthHandler_Logout_PassesJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)
	w := serve("POST", "/auth/logout", "/auth/logout", nil, "", true, h.Logout)
	expect(t, w, http.StatusOK, 0)
	if mock.logoutJTI != "test-jti" {
		t.Errorf("期望 jti=test-jti，实际: %s", mock.logoutJTI)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	w := serve("GET", "/auth/me", "/auth/me", nil, "", false, h.Me)
	expect(t, w, http.StatusUnauthorized, 10002)
}

func TestAuthHandler_Me_DeletedUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meErr: service.ErrUserNotFound})
	w := serve("GET", "/auth/me", "/auth/me", nil, "", true, h.Me)
	expect(t, w, http.StatusUnauthorized, 10002)
}

// ═══════════════════════════════════════════════════════════
// SchoolHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSchoolHandler_List(t *testing.T) {
	mock := &mockSchoolService{list: []model.School{{ID: 1, Name: "THCS Đức Phú"}}}
	h := NewSchoolHandler(mock)
	w := serve("GET", "/schools", "/schools?q=duc", nil, "", true, h.ListSchools)
	expect(t, w, http.StatusOK, 0)
	if mock.lastQuery != "duc" {
		t.Errorf("期望 q=duc，实际: %s", mock.lastQuery)
	}
}

func TestSchoolHandler_Create_InvalidLevel(t *testing.T) {
	mock := &mockSchoolService{}
	h := NewSchoolHandler(mock)
	w := serve("POST", "/schools", "/schools", jsonBody(dto.SchoolRequest{Name: "A", Level: "Đại học", Location: "B"}), "application/json", true, h.CreateSchool)
	expect(t, w, http.StatusBadRequest, 12003)
	if mock.created != nil {
		t.Error("校验失败不应调用 Service")
	}
}

func TestSchoolHandler_Create_Required(t *testing.T) {
	h := NewSchoolHandler(&mockSchoolService{err: service.ErrSchoolRequired})
	w := serve("POST", "/schools", "/schools", jsonBody(dto.SchoolRequest{Name: "A"}), "application/json", true, h.CreateSchool)
	expect(t, w, http.StatusBadRequest, 12001)
}

func TestSchoolHandler_Create_Success(t *testing.T) {
	h := NewSchoolHandler(&mockSchoolService{})
	w := serve("POST", "/schools", "/schools", jsonBody(dto.SchoolRequest{Name: "A", Level: "Tiểu học", Location: "B"}), "application/json", true, h.CreateSchool)
	expect(t, w, http.StatusCreated, 0)
}

func TestSchoolHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrSchoolNotFound, http.StatusNotFound, 12002},
		{service.ErrSchoolAccess, http.StatusForbidden, 12004},
		{fmt.Errorf("%w: boom", pkgerrors.ErrStoreWrite), http.StatusBadGateway, 10007},
	}
	for _, tc := range cases {
		h := NewSchoolHandler(&mockSchoolService{err: tc.err})
		w := serve("GET", "/schools/:id", "/schools/3", nil, "", true, h.GetSchool)
		expect(t, w, tc.status, tc.code)
	}
}

func TestSchoolHandler_BadID(t *testing.T) {
	h := NewSchoolHandler(&mockSchoolService{})
	w := serve("DELETE", "/schools/:id", "/schools/abc", nil, "", true, h.DeleteSchool)
	expect(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// SchoolYearHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSchoolYearHandler_Create_BadFormat(t *testing.T) {
	mock := &mockYearService{}
	h := NewSchoolYearHandler(mock)
	w := serve("POST", "/school-years", "/school-years", jsonBody(dto.SchoolYearRequest{Year: "2025/2026"}), "application/json", true, h.CreateYear)
	expect(t, w, http.StatusBadRequest, 13001)
	if resp := parseResponse(w); resp.Message != service.ErrYearFormat.Error() {
		t.Errorf("期望格式提示，实际: %s", resp.Message)
	}
	if mock.created != nil {
		t.Error("校验失败不应调用 Service")
	}
}

func TestSchoolYearHandler_Create_Duplicate(t *testing.T) {
	h := NewSchoolYearHandler(&mockYearService{err: service.ErrYearDuplicate})
	w := serve("POST", "/school-years", "/school-years", jsonBody(dto.SchoolYearRequest{Year: "2024-2025"}), "application/json", true, h.CreateYear)
	expect(t, w, http.StatusConflict, 13002)
}

func TestSchoolYearHandler_LockUnlock(t *testing.T) {
	mock := &mockYearService{}
	h := NewSchoolYearHandler(mock)

	w := serve("PUT", "/school-years/:id/lock", "/school-years/2/lock", nil, "", true, h.Lock)
	expect(t, w, http.StatusOK, 0)
	if mock.lockedID != 2 || !mock.lockedVal {
		t.Errorf("期望锁定学年 2，实际: id=%d locked=%v", mock.lockedID, mock.lockedVal)
	}

	w = serve("PUT", "/school-years/:id/unlock", "/school-years/2/unlock", nil, "", true, h.Unlock)
	expect(t, w, http.StatusOK, 0)
	if mock.lockedVal {
		t.Error("期望解锁")
	}
}

func TestSchoolYearHandler_Current_None(t *testing.T) {
	h := NewSchoolYearHandler(&mockYearService{err: service.ErrNoCurrentYear})
	w := serve("GET", "/school-years/current", "/school-years/current", nil, "", true, h.CurrentYear)
	expect(t, w, http.StatusNotFound, 13004)
}

// ═══════════════════════════════════════════════════════════
// FieldHandler Tests
// ═══════════════════════════════════════════════════════════

func TestFieldHandler_Create_MissingLabel(t *testing.T) {
	h := NewFieldHandler(&mockFieldService{})
	w := serve("POST", "/fields", "/fields", jsonBody(dto.CreateFieldRequest{Tab: "staff", Type: "text"}), "application/json", true, h.CreateField)
	expect(t, w, http.StatusBadRequest, 14001)
}

func TestFieldHandler_Create_BadTab(t *testing.T) {
	h := NewFieldHandler(&mockFieldService{})
	w := serve("POST", "/fields", "/fields", jsonBody(dto.CreateFieldRequest{Tab: "overview", Label: "X", Type: "text"}), "application/json", true, h.CreateField)
	expect(t, w, http.StatusBadRequest, 14005)
}

func TestFieldHandler_Create_Duplicate(t *testing.T) {
	h := NewFieldHandler(&mockFieldService{err: service.ErrFieldDuplicate})
	w := serve("POST", "/fields", "/fields", jsonBody(dto.CreateFieldRequest{Tab: "staff", Label: "Họ tên", Type: "text"}), "application/json", true, h.CreateField)
	expect(t, w, http.StatusConflict, 14002)
}

func TestFieldHandler_Delete_NotFound(t *testing.T) {
	h := NewFieldHandler(&mockFieldService{err: service.ErrFieldNotFound})
	w := serve("DELETE", "/fields/:id", "/fields/df_99", nil, "", true, h.DeleteField)
	expect(t, w, http.StatusNotFound, 14004)
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_Delete_PassesCaller(t *testing.T) {
	mock := &mockUserService{err: service.ErrDeleteSelf}
	h := NewUserHandler(mock)
	w := serve("DELETE", "/users/:id", "/users/1", nil, "", true, h.DeleteUser)
	expect(t, w, http.StatusBadRequest, 15004)
	if mock.callerID != 1 {
		t.Errorf("期望 callerID=1，实际: %d", mock.callerID)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrUserNotFound})
	w := serve("GET", "/users/:id", "/users/42", nil, "", true, h.GetUser)
	expect(t, w, http.StatusNotFound, 15005)
}

func TestUserHandler_Create_BadRole(t *testing.T) {
	h := NewUserHandler(&mockUserService{})
	w := serve("POST", "/users", "/users", jsonBody(dto.CreateUserRequest{Name: "A", Username: "a", Password: "p", Role: "root"}), "application/json", true, h.CreateUser)
	expect(t, w, http.StatusBadRequest, 15001)
}

func TestUserHandler_Create_Taken(t *testing.T) {
	h := NewUserHandler(&mockUserService{err: service.ErrUsernameTaken})
	w := serve("POST", "/users", "/users", jsonBody(dto.CreateUserRequest{Name: "A", Username: "admin", Password: "p", Role: "user"}), "application/json", true, h.CreateUser)
	expect(t, w, http.StatusConflict, 15003)
}

// ═══════════════════════════════════════════════════════════
// RecordHandler Tests
// ═══════════════════════════════════════════════════════════

const recordRoute = "/records/:schoolId/:yearId"

func TestRecordHandler_Ref(t *testing.T) {
	mock := &mockRecordService{}
	h := NewRecordHandler(mock)
	w := serve("GET", recordRoute, "/records/3/2", nil, "", true, h.GetRecord)
	expect(t, w, http.StatusOK, 0)
	if mock.ref != (service.RecordRef{UserID: 1, SchoolID: 3, YearID: 2}) {
		t.Errorf("RecordRef 解析错误: %+v", mock.ref)
	}
}

func TestRecordHandler_SetField(t *testing.T) {
	mock := &mockRecordService{}
	h := NewRecordHandler(mock)
	w := serve("PUT", recordRoute+"/fields/:name", "/records/1/1/fields/total_students", jsonBody(map[string]any{"value": 450}), "application/json", true, h.SetField)
	expect(t, w, http.StatusOK, 0)
	if mock.fieldName != "total_students" || mock.fieldValue != float64(450) {
		t.Errorf("期望 total_students=450，实际: %s=%v", mock.fieldName, mock.fieldValue)
	}
}

func TestRecordHandler_SetField_InvalidValue(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: model.ErrInvalidNumber})
	w := serve("PUT", recordRoute+"/fields/:name", "/records/1/1/fields/total_students", jsonBody(map[string]any{"value": "abc"}), "application/json", true, h.SetField)
	expect(t, w, http.StatusBadRequest, 16007)
}

func TestRecordHandler_BeginEdit_Locked(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: session.ErrYearLocked})
	w := serve("POST", recordRoute+"/edit", "/records/1/2/edit", nil, "", true, h.BeginEdit)
	expect(t, w, http.StatusForbidden, 16004)
}

func TestRecordHandler_Save_Message(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})
	w := serve("POST", recordRoute+"/save", "/records/1/1/save", nil, "", true, h.Save)
	expect(t, w, http.StatusOK, 0)
	if resp := parseResponse(w); resp.Message != service.SavedMessage {
		t.Errorf("期望保存提示，实际: %s", resp.Message)
	}
}

func TestRecordHandler_Save_NotEditing(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: session.ErrNotEditing})
	w := serve("POST", recordRoute+"/save", "/records/1/1/save", nil, "", true, h.Save)
	expect(t, w, http.StatusConflict, 16005)
}

func TestRecordHandler_Cancel_WhileSaving(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: session.ErrSaving})
	w := serve("POST", recordRoute+"/cancel", "/records/1/1/cancel", nil, "", true, h.Cancel)
	expect(t, w, http.StatusConflict, 16005)
}

func TestRecordHandler_Attach(t *testing.T) {
	mock := &mockRecordService{}
	h := NewRecordHandler(mock)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("field_name", "careContractFile")
	fw, _ := mw.CreateFormFile("file", "hop-dong.pdf")
	fw.Write([]byte("%PDF-1.4"))
	mw.Close()

	w := serve("POST", recordRoute+"/attachments", "/records/1/1/attachments", &body, mw.FormDataContentType(), true, h.Attach)
	expect(t, w, http.StatusCreated, 0)
	if mock.fieldName != "careContractFile" || string(mock.upload) != "%PDF-1.4" {
		t.Errorf("上传内容错误: field=%s data=%q", mock.fieldName, mock.upload)
	}
}

func TestRecordHandler_Attach_MissingFile(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("field_name", "careContractFile")
	mw.Close()

	w := serve("POST", recordRoute+"/attachments", "/records/1/1/attachments", &body, mw.FormDataContentType(), true, h.Attach)
	expect(t, w, http.StatusBadRequest, 10001)
}

func TestRecordHandler_Attach_TooLarge(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: blob.ErrTooLarge})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("field_name", "df_13")
	fw, _ := mw.CreateFormFile("file", "a.bin")
	fw.Write([]byte("x"))
	mw.Close()

	w := serve("POST", recordRoute+"/attachments", "/records/1/1/attachments", &body, mw.FormDataContentType(), true, h.Attach)
	expect(t, w, http.StatusRequestEntityTooLarge, 16008)
}

func TestRecordHandler_Download_Inline(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{download: &service.Download{
		Attachment: model.FileAttachment{ID: "a1", FileName: "kế hoạch.pdf"},
		Object:     &blob.Object{ContentType: "application/pdf", Data: []byte("%PDF")},
	}})
	w := serve("GET", recordRoute+"/attachments/:id", "/records/1/1/attachments/a1", nil, "", true, h.DownloadAttachment)
	if w.Code != http.StatusOK || w.Body.String() != "%PDF" {
		t.Fatalf("期望返回文件内容，实际: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("Content-Type 错误: %s", w.Header().Get("Content-Type"))
	}
}

func TestRecordHandler_Download_Redirect(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{download: &service.Download{
		Attachment: model.FileAttachment{ID: "a1"},
		Object:     &blob.Object{URL: "https://s3.example/bucket/key?sig=1"},
	}})
	w := serve("GET", recordRoute+"/attachments/:id", "/records/1/1/attachments/a1", nil, "", true, h.DownloadAttachment)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "https://s3.example/bucket/key?sig=1" {
		t.Errorf("期望 302 重定向，实际: %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestRecordHandler_Download_NotFound(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{err: session.ErrAttachmentNotFound})
	w := serve("GET", recordRoute+"/attachments/:id", "/records/1/1/attachments/zz", nil, "", true, h.DownloadAttachment)
	expect(t, w, http.StatusNotFound, 16010)
}

// ═══════════════════════════════════════════════════════════
// Report / Export / Dashboard / System Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Tabular_MissingParams(t *testing.T) {
	h := NewReportHandler(&mockReportService{})
	w := serve("GET", "/reports/tabular", "/reports/tabular?tab=staff", nil, "", true, h.Tabular)
	expect(t, w, http.StatusBadRequest, 10001)
}

func TestReportHandler_Compare_SameYear(t *testing.T) {
	h := NewReportHandler(&mockReportService{err: service.ErrCompareSameYear})
	w := serve("GET", "/reports/compare", "/reports/compare?year1=1&year2=1", nil, "", true, h.Compare)
	expect(t, w, http.StatusBadRequest, 17001)
}

func TestExportHandler_ExportReport(t *testing.T) {
	h := NewExportHandler(&mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "bao-cao_staff_1.xlsx"})
	w := serve("GET", "/export/report", "/export/report?year_id=1&tab=staff", nil, "", true, h.ExportReport)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("Content-Type 错误: %s", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("Content-Disposition") != "attachment; filename*=UTF-8''bao-cao_staff_1.xlsx" {
		t.Errorf("Content-Disposition 错误: %s", w.Header().Get("Content-Disposition"))
	}
}

func TestExportHandler_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportEmpty})
	w := serve("GET", "/export/report", "/export/report?year_id=1&tab=staff", nil, "", true, h.ExportReport)
	expect(t, w, http.StatusBadRequest, 18001)
}

func TestDashboardHandler_Get(t *testing.T) {
	h := NewDashboardHandler(&mockDashboardService{})
	w := serve("GET", "/dashboard", "/dashboard?year_id=2", nil, "", true, h.Get)
	expect(t, w, http.StatusOK, 0)

	h = NewDashboardHandler(&mockDashboardService{err: service.ErrNoCurrentYear})
	w = serve("GET", "/dashboard", "/dashboard", nil, "", true, h.Get)
	expect(t, w, http.StatusNotFound, 19002)
}

func TestSystemHandler_Reset(t *testing.T) {
	mock := &mockSystemService{}
	h := NewSystemHandler(mock)
	w := serve("POST", "/system/reset", "/system/reset", nil, "", true, h.Reset)
	expect(t, w, http.StatusOK, 0)
	if mock.calls != 1 {
		t.Errorf("期望调用一次 Reset，实际: %d", mock.calls)
	}
}
