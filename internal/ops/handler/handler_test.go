package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/repository"
	"github.com/bitfantasy/smdesk/internal/ops/service"
	"github.com/bitfantasy/smdesk/internal/ops/sse"
	"github.com/bitfantasy/smdesk/internal/ops/testutil"
	"github.com/bitfantasy/smdesk/internal/ops/view"
	"github.com/bitfantasy/smdesk/internal/shared/objectstore"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fakeREST 内存版PostgREST，只实现客户端用到的四个动作。
// 标题为 FAIL 的插入返回400
type fakeREST struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	nextID  int
	posts   int
	patches int
}

func newFakeREST() *fakeREST {
	return &fakeREST{tables: map[string][]map[string]interface{}{}, nextID: 1}
}

func (f *fakeREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		rows := f.tables[table]
		if rows == nil {
			rows = []map[string]interface{}{}
		}
		json.NewEncoder(w).Encode(rows)
	case http.MethodPost:
		f.posts++
		var row map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &row)
		if row["title"] == "FAIL" || row["inquiry_content"] == "FAIL" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":"23502","message":"null value in column","details":"row rejected"}`))
			return
		}
		row["id"] = f.nextID
		row["created_at"] = "2024-01-01T00:00:00Z"
		row["updated_at"] = "2024-01-01T00:00:00Z"
		f.nextID++
		f.tables[table] = append(f.tables[table], row)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]map[string]interface{}{row})
	case http.MethodPatch:
		f.patches++
		var patch map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &patch)
		for _, row := range f.tables[table] {
			if strconv.Itoa(row["id"].(int)) == id {
				for k, v := range patch {
					row[k] = v
				}
				json.NewEncoder(w).Encode([]map[string]interface{}{row})
				return
			}
		}
		w.Write([]byte(`[]`))
	case http.MethodDelete:
		rows := f.tables[table]
		for i, row := range rows {
			if strconv.Itoa(row["id"].(int)) == id {
				f.tables[table] = append(rows[:i], rows[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeREST) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

type fakeLinks struct {
	published []string
}

func (f *fakeLinks) Publish(ctx context.Context, fileName, contentType string, data []byte) (*objectstore.Link, error) {
	f.published = append(f.published, fileName)
	return &objectstore.Link{URL: "https://files.example/" + fileName, Object: "exports/" + fileName}, nil
}

type testEnv struct {
	router *gin.Engine
	rest   *fakeREST
	hub    *sse.Hub
}

func setupHandlerTest(t *testing.T, links LinkPublisher) *testEnv {
	t.Helper()
	rest := newFakeREST()
	srv := httptest.NewServer(rest)
	t.Cleanup(srv.Close)

	client := postgrest.NewClient(srv.URL, "test-key", postgrest.WithHTTPClient(srv.Client()))
	hub := sse.NewHub(zap.NewNop())
	svc := service.NewServices(repository.NewRESTRepositories(client), hub, service.Defaults{
		Activity: entity.ActivityDefaults{WorkDateOffsetDays: 1},
		Inquiry:  entity.InquiryDefaults{ResponseDateOffsetDays: 1},
	}, zap.NewNop())
	h := NewHandlers(svc, hub, view.NewMemorySessions(), links, zap.NewNop())

	router := testutil.SetupRouter()
	api := router.Group("/api/v1")
	h.Activity.Register(api.Group("/activities"), nil)
	h.Inquiry.Register(api.Group("/inquiries"), nil)
	h.ActivityView.Register(api.Group("/views/activities"))
	h.InquiryView.Register(api.Group("/views/inquiries"))

	return &testEnv{router: router, rest: rest, hub: hub}
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := testutil.ParseResponse(w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %s", w.Body.String())
	}
	return data
}

func TestActivityCreateListDelete(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{
		"document_type": "plan",
		"task_type":     "irregular",
		"title":         "배치 점검",
		"request_date":  "2024-01-10",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := dataOf(t, w)
	if created["work_date"] != "2024-01-11" {
		t.Errorf("expected derived work_date 2024-01-11, got %v", created["work_date"])
	}
	if created["year_month"] != "2024-01" {
		t.Errorf("expected year_month 2024-01, got %v", created["year_month"])
	}
	id := created["id"].(string)

	w = testutil.DoRequest(env.router, "GET", "/api/v1/activities?document_type=plan", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	list := dataOf(t, w)
	if items := list["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("expected 1 plan item, got %d", len(items))
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/activities?document_type=dashboard", nil, "")
	if items := dataOf(t, w)["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected dashboard filter to hide the plan record, got %d items", len(items))
	}

	w = testutil.DoRequest(env.router, "DELETE", "/api/v1/activities/"+id, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: expected 400, got %d", w.Code)
	}
	if env.rest.count("sm_activities") != 1 {
		t.Fatal("unconfirmed delete must not reach the store")
	}

	w = testutil.DoRequest(env.router, "DELETE", "/api/v1/activities/"+id+"?confirm=true", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.rest.count("sm_activities") != 0 {
		t.Error("record still present after delete")
	}
}

func TestActivityCreateRejectsBadEnum(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{
		"document_type": "memo",
		"title":         "x",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if env.rest.posts != 0 {
		t.Error("invalid body must not reach the store")
	}
}

func TestListRejectsUnknownDocumentType(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "GET", "/api/v1/inquiries?document_type=memo", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListPagination(t *testing.T) {
	env := setupHandlerTest(t, nil)
	for i := 0; i < 23; i++ {
		w := testutil.DoRequest(env.router, "POST", "/api/v1/inquiries", map[string]interface{}{
			"inquiry_content": "문의 " + strconv.Itoa(i),
			"request_date":    "2024-03-01",
		}, "")
		if w.Code != http.StatusCreated {
			t.Fatalf("seed %d: %d %s", i, w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(env.router, "GET", "/api/v1/inquiries?page=3", nil, "")
	data := dataOf(t, w)
	if items := data["items"].([]interface{}); len(items) != 3 {
		t.Errorf("expected 3 items on page 3, got %d", len(items))
	}
	p := data["pagination"].(map[string]interface{})
	if p["total"].(float64) != 23 || p["total_pages"].(float64) != 3 || p["page_size"].(float64) != 10 {
		t.Errorf("unexpected pagination: %v", p)
	}
}

func TestUpdateUnknownIDReturnsRemoteNotFound(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "PATCH", "/api/v1/activities/99", map[string]interface{}{"title": "x"}, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if dataOf(t, w)["remote_status"].(float64) != 404 {
		t.Errorf("expected remote_status 404: %s", w.Body.String())
	}
}

func TestImportStopsAtFirstFailure(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities/import", map[string]interface{}{
		"rows": []map[string]interface{}{
			{"title": "one", "request_date": "2024-01-01"},
			{"title": "two", "request_date": "2024-01-02"},
			{"title": "FAIL", "request_date": "2024-01-03"},
			{"title": "four", "request_date": "2024-01-04"},
		},
	}, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	data := dataOf(t, w)
	if data["committed"].(float64) != 2 || data["row"].(float64) != 2 {
		t.Errorf("expected committed=2 row=2, got %v", data)
	}
	if data["remote_status"].(float64) != 400 {
		t.Errorf("expected remote_status 400, got %v", data["remote_status"])
	}
	if env.rest.posts != 3 {
		t.Errorf("expected 3 insert attempts, got %d", env.rest.posts)
	}
	if env.rest.count("sm_activities") != 2 {
		t.Errorf("expected 2 stored rows, got %d", env.rest.count("sm_activities"))
	}
}

func TestUpdateEmptyPatchRejected(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{"title": "원본"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := strconv.Itoa(int(dataOf(t, w)["id"].(float64)))

	w = testutil.DoRequest(env.router, "PATCH", "/api/v1/activities/"+id, map[string]interface{}{}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if env.rest.patches != 0 {
		t.Errorf("empty patch reached the store %d times", env.rest.patches)
	}

	w = testutil.DoRequest(env.router, "PATCH", "/api/v1/inquiries/"+id, map[string]interface{}{}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inquiry, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateClearsSeqNo(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{"title": "순번", "seq_no": 7}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := strconv.Itoa(int(dataOf(t, w)["id"].(float64)))

	w = testutil.DoRequest(env.router, "PATCH", "/api/v1/activities/"+id, map[string]interface{}{"seq_no": nil}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	row := env.rest.tables["sm_activities"][0]
	if v, ok := row["seq_no"]; !ok || v != nil {
		t.Errorf("expected seq_no cleared, got %v (present=%v)", v, ok)
	}
}

func TestImportJSONRowGetsDefaults(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities/import", map[string]interface{}{
		"rows": []map[string]interface{}{{"title": "기본값"}},
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	row := env.rest.tables["sm_activities"][0]
	want := map[string]string{
		"it_manager":    entity.DefaultActivityAssignees.ITManager,
		"cns_manager":   entity.DefaultActivityAssignees.CNSManager,
		"developer":     entity.DefaultActivityAssignees.Developer,
		"document_type": string(entity.DocumentDashboard),
	}
	for col, v := range want {
		if row[col] != v {
			t.Errorf("%s: expected %q, got %v", col, v, row[col])
		}
	}
	for _, col := range []string{"request_date", "work_date", "year_month"} {
		if s, _ := row[col].(string); s == "" {
			t.Errorf("%s: expected a value, got %v", col, row[col])
		}
	}

	w = testutil.DoRequest(env.router, "POST", "/api/v1/inquiries/import", map[string]interface{}{
		"rows": []map[string]interface{}{{"inquiry_content": "기본값"}},
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for inquiry, got %d: %s", w.Code, w.Body.String())
	}
	inq := env.rest.tables["business_inquiries"][0]
	if s, _ := inq["request_date"].(string); s == "" {
		t.Errorf("inquiry request_date not defaulted: %v", inq)
	}
	if s, _ := inq["response_date"].(string); s == "" {
		t.Errorf("inquiry response_date not defaulted: %v", inq)
	}
}

func TestImportUploadAndPreview(t *testing.T) {
	env := setupHandlerTest(t, nil)
	csv := "문서 유형,구분,TASK 제목,요청일\nplan,regular,업로드 1,2024-02-01\ndashboard,irregular,업로드 2,2024-02-02\n"

	w := testutil.DoUpload(env.router, "/api/v1/activities/import/preview", "rows.csv", []byte(csv), "")
	if w.Code != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if dataOf(t, w)["total"].(float64) != 2 {
		t.Errorf("expected 2 preview rows: %s", w.Body.String())
	}
	if env.rest.posts != 0 {
		t.Fatal("preview must not write")
	}

	w = testutil.DoUpload(env.router, "/api/v1/activities/import", "rows.csv", []byte(csv), "")
	if w.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if dataOf(t, w)["committed"].(float64) != 2 {
		t.Errorf("expected 2 committed: %s", w.Body.String())
	}
}

func TestImportUploadRejectsLegacyXLS(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoUpload(env.router, "/api/v1/inquiries/import", "old.xls", []byte("binary"), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code := testutil.ParseResponse(w)["code"].(float64); code != CodeCodec {
		t.Errorf("expected code %d, got %v", CodeCodec, code)
	}
}

func TestExportAndTemplate(t *testing.T) {
	env := setupHandlerTest(t, nil)
	testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{
		"document_type": "plan", "title": "export me", "request_date": "2024-05-05",
	}, "")

	w := testutil.DoRequest(env.router, "GET", "/api/v1/activities/export?document_type=plan", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sm-activities-plan.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}

	w = testutil.DoRequest(env.router, "GET", "/api/v1/inquiries/template", nil, "")
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("template: expected xlsx body, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "business-inquiry-template.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
}

func TestExportLinkWithoutStorage(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities/export/link", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestExportLinkPublishesWorkbook(t *testing.T) {
	links := &fakeLinks{}
	env := setupHandlerTest(t, links)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/inquiries/export/link?document_type=dashboard", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(links.published) != 1 || links.published[0] != "business-inquiries-dashboard.xlsx" {
		t.Errorf("unexpected published files %v", links.published)
	}
	if url := dataOf(t, w)["url"]; url != "https://files.example/business-inquiries-dashboard.xlsx" {
		t.Errorf("unexpected link %v", url)
	}
}

func TestChangeEventsPublished(t *testing.T) {
	env := setupHandlerTest(t, nil)
	client := &sse.Client{ID: "c1", Events: make(chan sse.Event, 4)}
	env.hub.Register(client)
	defer env.hub.Unregister("c1")

	testutil.DoRequest(env.router, "POST", "/api/v1/inquiries", map[string]interface{}{
		"inquiry_content": "알림", "request_date": "2024-01-01",
	}, "")

	select {
	case ev := <-client.Events:
		if ev.EventType != sse.EventInquiryChange || !strings.Contains(ev.Data, `"create"`) {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no change event published")
	}
}

func viewCall(t *testing.T, env *testEnv, method, path, session string, body interface{}) (map[string]interface{}, string) {
	t.Helper()
	headers := map[string]string{}
	if session != "" {
		headers[SessionHeader] = session
	}
	w := testutil.DoRequestWithHeaders(env.router, method, path, body, "", headers)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: expected 200, got %d: %s", method, path, w.Code, w.Body.String())
	}
	data := dataOf(t, w)
	return data, w.Header().Get(SessionHeader)
}

func TestViewCreateFlow(t *testing.T) {
	env := setupHandlerTest(t, nil)
	base := "/api/v1/views/activities"

	data, session := viewCall(t, env, "GET", base, "", nil)
	if session == "" || data["session"] != session {
		t.Fatalf("expected a generated session, got %q / %v", session, data["session"])
	}

	data, _ = viewCall(t, env, "POST", base+"/new", session, nil)
	v := data["view"].(map[string]interface{})
	if v["mode"] != string(view.ModeCreating) {
		t.Fatalf("expected creating mode, got %v", v["mode"])
	}

	viewCall(t, env, "POST", base+"/field", session, map[string]string{"field": "title", "value": "뷰에서 생성"})
	data, _ = viewCall(t, env, "POST", base+"/field", session, map[string]string{"field": "request_date", "value": "2024-01-10"})
	draft := data["view"].(map[string]interface{})["draft"].(map[string]interface{})
	if draft["work_date"] != "2024-01-11" {
		t.Errorf("expected work_date 2024-01-11, got %v", draft["work_date"])
	}

	data, _ = viewCall(t, env, "POST", base+"/submit", session, nil)
	v = data["view"].(map[string]interface{})
	if v["mode"] != string(view.ModeListing) {
		t.Errorf("expected listing after submit, got %v", v["mode"])
	}
	if v["total"].(float64) != 1 {
		t.Errorf("expected reloaded list with 1 record, got %v", v["total"])
	}
}

func TestViewSubmitFailureKeepsForm(t *testing.T) {
	env := setupHandlerTest(t, nil)
	base := "/api/v1/views/inquiries"

	_, session := viewCall(t, env, "POST", base+"/new", "", nil)
	viewCall(t, env, "POST", base+"/field", session, map[string]string{"field": "inquiry_content", "value": "FAIL"})

	w := testutil.DoRequestWithHeaders(env.router, "POST", base+"/submit", nil, "", map[string]string{SessionHeader: session})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}

	data, _ := viewCall(t, env, "GET", base, session, nil)
	v := data["view"].(map[string]interface{})
	if v["mode"] != string(view.ModeCreating) {
		t.Errorf("form should stay open after failure, got %v", v["mode"])
	}
	if v["draft"].(map[string]interface{})["inquiry_content"] != "FAIL" {
		t.Error("draft should be preserved after failure")
	}
}

func TestViewDeleteNeedsConfirmation(t *testing.T) {
	env := setupHandlerTest(t, nil)
	w := testutil.DoRequest(env.router, "POST", "/api/v1/activities", map[string]interface{}{"title": "삭제 대상"}, "")
	id := dataOf(t, w)["id"].(string)
	base := "/api/v1/views/activities"

	data, session := viewCall(t, env, "POST", base+"/delete/"+id, "", nil)
	if data["prompt"] != "정말로 이 활동을 삭제하시겠습니까?" {
		t.Errorf("expected delete prompt, got %v", data["prompt"])
	}
	if env.rest.count("sm_activities") != 1 {
		t.Fatal("unconfirmed delete must not reach the store")
	}

	data, _ = viewCall(t, env, "POST", base+"/delete/"+id, session, map[string]bool{"confirm": true})
	if env.rest.count("sm_activities") != 0 {
		t.Error("confirmed delete should remove the record")
	}
	if data["view"].(map[string]interface{})["total"].(float64) != 0 {
		t.Error("list should be reloaded after delete")
	}
}

func TestViewEditUnknownRecord(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/views/activities/edit/404", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestViewFieldWithoutForm(t *testing.T) {
	env := setupHandlerTest(t, nil)

	w := testutil.DoRequest(env.router, "POST", "/api/v1/views/activities/field", map[string]string{"field": "title", "value": "x"}, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordRoutesBehindAuth(t *testing.T) {
	rest := newFakeREST()
	srv := httptest.NewServer(rest)
	defer srv.Close()

	client := postgrest.NewClient(srv.URL, "test-key")
	svc := service.NewServices(repository.NewRESTRepositories(client), nil, service.Defaults{}, zap.NewNop())
	h := NewHandlers(svc, nil, nil, nil, nil)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	h.Activity.Register(api.Group("/activities"), nil)

	w := testutil.DoRequest(router, "GET", "/api/v1/activities", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/activities", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}
