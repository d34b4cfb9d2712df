package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mborhani/vizboard/internal/session/inmemory"
)

func testHandler() *DashboardHandler {
	return &DashboardHandler{
		Sessions:  inmemory.NewInMemorySessionStore(),
		Pipeline:  testPipeline(),
		TTL:       time.Hour,
		PNGWidth:  320,
		PNGHeight: 240,
	}
}

func jsonReq(t *testing.T, method, path, body, cookie string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func uploadBody(name, csv string) string {
	content := base64.StdEncoding.EncodeToString([]byte(csv))
	return fmt.Sprintf(`{"filename":%q,"content_base64":%q}`, name, content)
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func TestUploadEndpoint(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodPost, "/api/upload", uploadBody("data.csv", "x,y\n1,2\n3,4\n"), "")

	if err := h.upload(ctx); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out Update
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Visible || out.X != "x" || out.Y != "y" {
		t.Fatalf("unexpected update: %+v", out)
	}
	if !strings.Contains(out.Status, "data.csv") {
		t.Fatalf("status should name file: %q", out.Status)
	}
	if sessionFrom(t, rec) == "" {
		t.Fatal("first contact should set a session cookie")
	}
}

func TestUploadEndpointRejectsEmptyBody(t *testing.T) {
	h := testHandler()
	_, ctx := jsonReq(t, http.MethodPost, "/api/upload", `{}`, "")
	err := h.upload(ctx)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestSelectionAndChartFlow(t *testing.T) {
	h := testHandler()

	rec, ctx := jsonReq(t, http.MethodPost, "/api/upload", uploadBody("d.csv", "a,b\nred,1\nblue,2\nred,3\n"), "")
	if err := h.upload(ctx); err != nil {
		t.Fatalf("upload: %v", err)
	}
	sid := sessionFrom(t, rec)

	rec, ctx = jsonReq(t, http.MethodPost, "/api/selection", `{"chart_type":"pie"}`, sid)
	if err := h.selection(ctx); err != nil {
		t.Fatalf("selection: %v", err)
	}
	var out Update
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ChartType != "pie" || out.Chart.IsEmpty() {
		t.Fatalf("unexpected update: %+v", out)
	}
	tr := out.Chart.Data[0]
	if tr.Kind != "pie" || len(tr.Labels) != 2 {
		t.Fatalf("trace = %+v", tr)
	}

	rec, ctx = jsonReq(t, http.MethodGet, "/api/chart", "", sid)
	if err := h.chart(ctx); err != nil {
		t.Fatalf("chart: %v", err)
	}
	var spec struct {
		Data []struct {
			Kind string `json:"type"`
		} `json:"data"`
		Layout struct {
			Transition struct {
				Duration int `json:"duration"`
			} `json:"transition"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(spec.Data) != 1 || spec.Data[0].Kind != "pie" {
		t.Fatalf("spec = %+v", spec)
	}
	if spec.Layout.Transition.Duration != 500 {
		t.Fatalf("transition = %d", spec.Layout.Transition.Duration)
	}
}

func TestSelectionRejectsUnknownColumn(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodPost, "/api/upload", uploadBody("d.csv", "a,b\n1,2\n"), "")
	if err := h.upload(ctx); err != nil {
		t.Fatalf("upload: %v", err)
	}
	sid := sessionFrom(t, rec)

	rec, ctx = jsonReq(t, http.MethodPost, "/api/selection", `{"x":"zebra"}`, sid)
	if err := h.selection(ctx); err != nil {
		t.Fatalf("selection: %v", err)
	}
	var out Update
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.StatusColor != "red" || out.X != "a" {
		t.Fatalf("unexpected update: %+v", out)
	}
}

func TestColumnsEndpointFreshSession(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodGet, "/api/columns", "", "")
	if err := h.columns(ctx); err != nil {
		t.Fatalf("columns: %v", err)
	}
	var proj struct {
		Visible bool     `json:"visible"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if proj.Visible || len(proj.Columns) != 0 {
		t.Fatalf("fresh session projection = %+v", proj)
	}
}

func TestReadOnlyEndpointsMintNoSession(t *testing.T) {
	h := testHandler()
	calls := []struct {
		name string
		fn   func(echo.Context) error
	}{
		{"columns", h.columns},
		{"chart", h.chart},
		{"chart.png", h.chartPNG},
	}
	for _, call := range calls {
		rec, ctx := jsonReq(t, http.MethodGet, "/api/"+call.name, "", "")
		if err := call.fn(ctx); err != nil {
			t.Fatalf("%s: %v", call.name, err)
		}
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == sessionCookie {
				t.Fatalf("%s minted a session cookie", call.name)
			}
		}
	}
}

func TestChartEndpointFreshSessionEmptySpec(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodGet, "/api/chart", "", "")
	if err := h.chart(ctx); err != nil {
		t.Fatalf("chart: %v", err)
	}
	var spec struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(spec.Data) != 0 {
		t.Fatalf("fresh session chart has %d traces", len(spec.Data))
	}
}

func TestChartPNGEndpoint(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodPost, "/api/upload", uploadBody("d.csv", "x,y\n1,2\n3,4\n5,6\n"), "")
	if err := h.upload(ctx); err != nil {
		t.Fatalf("upload: %v", err)
	}
	sid := sessionFrom(t, rec)

	rec, ctx = jsonReq(t, http.MethodGet, "/api/chart.png", "", sid)
	if err := h.chartPNG(ctx); err != nil {
		t.Fatalf("chartPNG: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Fatal("body is not a PNG")
	}
}

func TestChartPNGEmptySession(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodGet, "/api/chart.png", "", "")
	if err := h.chartPNG(ctx); err != nil {
		t.Fatalf("chartPNG: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestURLEndpointFailureSurfacesDetail(t *testing.T) {
	h := testHandler()
	rec, ctx := jsonReq(t, http.MethodPost, "/api/url", `{"url":"http://127.0.0.1:1/never"}`, "")
	if err := h.url(ctx); err != nil {
		t.Fatalf("url: %v", err)
	}
	var out Update
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.StatusColor != "red" {
		t.Fatalf("status color = %q", out.StatusColor)
	}
	if !strings.Contains(out.Status, "error loading from link:") {
		t.Fatalf("fetch failure should surface detail: %q", out.Status)
	}
}
