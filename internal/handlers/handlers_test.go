package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/mail"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/services"
	"github.com/diewo77/invoice-cli/view"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type env struct {
	db       *db.DB
	entity   *EntityHandler
	invoices *InvoiceHandler
	email    *EmailHandler
	imports  *ImportHandler
	sender   *fakeSender
}

func setup(t *testing.T) *env {
	t.Helper()
	d, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"), db.Options{})
	if err != nil {
		t.Fatalf("db.Open() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	fs := &fakeSender{}
	dial := func(models.EmailConfig) (mail.Sender, error) { return fs, nil }
	return &env{
		db:       d,
		entity:   NewEntityHandler(d, 1000),
		invoices: NewInvoiceHandler(d, services.NewInvoiceService(d), view.New("", false), dial),
		email:    NewEmailHandler(d, dial),
		imports:  NewImportHandler(d),
		sender:   fs,
	}
}

func request(method, target, body string, values map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range values {
		req.SetPathValue(k, v)
	}
	return req
}

func (e *env) create(t *testing.T, table, body string) int64 {
	t.Helper()
	rr := httptest.NewRecorder()
	e.entity.Create(rr, request(http.MethodPost, "/api/"+table, body, map[string]string{"table": table}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %s: code = %d, body = %s", table, rr.Code, rr.Body.String())
	}
	var out struct{ ID int64 }
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out.ID
}

// seedInvoice creates the entities of one invoice through the API.
func (e *env) seedInvoice(t *testing.T) int64 {
	company := e.create(t, "company", `{"name":"Acme","contact":{"city":"Springfield"}}`)
	client := e.create(t, "client", `{"name":"Globex","contact":{"email":"ap@globex.test, boss@globex.test"}}`)
	terms := e.create(t, "terms", `{"name":"Net 30","due":30}`)
	method := e.create(t, "methods", `{"name":"Wire","link":"https://pay.test"}`)
	a := e.create(t, "items", `{"name":"A","rate":"10"}`)
	b := e.create(t, "items", `{"name":"B","rate":"2.5"}`)
	tpl := e.create(t, "templates", fmt.Sprintf(
		`{"name":"Monthly","company_id":%d,"client_id":%d,"terms_id":%d,"methods":[%d]}`,
		company, client, terms, method))
	return e.create(t, "invoices", fmt.Sprintf(
		`{"template_id":%d,"date":"20240115","items":[{"item":%d,"quantity":3},{"item":%d,"quantity":2}]}`,
		tpl, a, b))
}

func TestCreateAndGet(t *testing.T) {
	e := setup(t)
	id := e.create(t, "items", `{"name":"Widget","rate":"12.50"}`)

	rr := httptest.NewRecorder()
	e.entity.Get(rr, request(http.MethodGet, "/", "", map[string]string{"table": "items", "id": fmt.Sprint(id)}))
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rr.Code)
	}
	var item models.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &item); err != nil {
		t.Fatal(err)
	}
	if item.Name != "Widget" || item.Rate.String() != "12.5" {
		t.Errorf("item = %+v", item)
	}
}

func TestCreate_Errors(t *testing.T) {
	e := setup(t)
	e.create(t, "terms", `{"name":"Net 30","due":30}`)
	tests := []struct {
		name  string
		table string
		body  string
		want  int
	}{
		{"unknown table", "widgets", `{}`, http.StatusNotFound},
		{"email config is not a table", "email_config", `{}`, http.StatusNotFound},
		{"malformed json", "terms", `{"name":`, http.StatusBadRequest},
		{"unknown field", "terms", `{"nom":"x"}`, http.StatusBadRequest},
		{"unknown invoice field", "invoices", `{"template_id":1,"date":"20240115","item":[]}`, http.StatusBadRequest},
		{"blank name", "terms", `{"name":" ","due":1}`, http.StatusUnprocessableEntity},
		{"negative rate", "items", `{"name":"x","rate":"-1"}`, http.StatusUnprocessableEntity},
		{"bad date", "invoices", `{"template_id":1,"date":"2024-01-15","items":[]}`, http.StatusUnprocessableEntity},
		{"paid without date", "invoices", `{"template_id":1,"date":"20240115","status":{"kind":"Paid"}}`, http.StatusUnprocessableEntity},
		{"duplicate name", "terms", `{"name":"Net 30","due":15}`, http.StatusConflict},
		{"dangling template", "invoices", `{"template_id":99,"date":"20240115","items":[]}`, http.StatusConflict},
		{"logo not an image", "company", `{"name":"x","logo":"aGVsbG8="}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			e.entity.Create(rr, request(http.MethodPost, "/", tt.body, map[string]string{"table": tt.table}))
			if rr.Code != tt.want {
				t.Errorf("code = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestEditAndDelete(t *testing.T) {
	e := setup(t)
	inv := e.seedInvoice(t)

	rr := httptest.NewRecorder()
	e.entity.Edit(rr, request(http.MethodPatch, "/", `{"status":{"kind":"Paid","date":"2024-03-01","check":"1042"}}`,
		map[string]string{"table": "invoices", "id": fmt.Sprint(inv)}))
	if rr.Code != http.StatusOK {
		t.Fatalf("edit code = %d, body = %s", rr.Code, rr.Body.String())
	}
	got, err := e.db.GetInvoice(context.Background(), inv)
	if err != nil {
		t.Fatal(err)
	}
	if got.Attributes.Status.String() != "Paid 2024-03-01 (check 1042)" {
		t.Errorf("status = %q", got.Attributes.Status.String())
	}

	rr = httptest.NewRecorder()
	e.entity.Edit(rr, request(http.MethodPatch, "/", `{"name":"x"}`, map[string]string{"table": "terms", "id": "404"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("edit missing code = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	e.entity.Delete(rr, request(http.MethodDelete, "/", "", map[string]string{"table": "templates", "id": "1"}))
	if rr.Code != http.StatusConflict {
		t.Errorf("delete referenced template code = %d, want 409", rr.Code)
	}

	rr = httptest.NewRecorder()
	e.entity.Delete(rr, request(http.MethodDelete, "/", "", map[string]string{"table": "invoices", "id": fmt.Sprint(inv)}))
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete code = %d, want 204", rr.Code)
	}
	if _, err := e.db.GetInvoice(context.Background(), inv); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetInvoice() after delete err = %v, want ErrNotFound", err)
	}

	rr = httptest.NewRecorder()
	e.entity.Delete(rr, request(http.MethodDelete, "/", "", map[string]string{"table": "invoices", "id": "abc"}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("delete bad id code = %d, want 400", rr.Code)
	}
}

func TestList(t *testing.T) {
	e := setup(t)
	e.seedInvoice(t)
	rr := httptest.NewRecorder()
	e.entity.List(rr, request(http.MethodGet, "/", "", map[string]string{"table": "items"}))
	var rows []models.ShortList
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Label != "A" || rows[1].Label != "B" {
		t.Errorf("List() = %+v", rows)
	}
}

func TestSummaryAndHTML(t *testing.T) {
	e := setup(t)
	inv := e.seedInvoice(t)

	rr := httptest.NewRecorder()
	e.invoices.Summary(rr, request(http.MethodGet, "/", "", map[string]string{"id": fmt.Sprint(inv)}))
	var sum services.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Total != "35.00" || sum.DueDate != "2024-02-14" {
		t.Errorf("summary total/due = %s/%s, want 35.00/2024-02-14", sum.Total, sum.DueDate)
	}

	rr = httptest.NewRecorder()
	e.invoices.Summaries(rr, request(http.MethodGet, "/", "", nil))
	var all []services.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != inv {
		t.Errorf("Summaries() = %+v", all)
	}

	rr = httptest.NewRecorder()
	e.invoices.HTML(rr, request(http.MethodGet, "/", "", map[string]string{"file": fmt.Sprintf("%d.html", inv)}))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "35.00") {
		t.Errorf("HTML code = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	e.invoices.HTML(rr, request(http.MethodGet, "/", "", map[string]string{"file": "1.pdf"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("HTML non-html code = %d, want 404", rr.Code)
	}
}

func TestSend(t *testing.T) {
	e := setup(t)
	inv := e.seedInvoice(t)
	target := map[string]string{"id": fmt.Sprint(inv)}

	rr := httptest.NewRecorder()
	e.invoices.Send(rr, request(http.MethodPost, "/", "", target))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("send without settings code = %d, want 404", rr.Code)
	}

	if err := e.db.SaveEmailConfig(context.Background(), models.DefaultEmailConfig()); err != nil {
		t.Fatal(err)
	}
	rr = httptest.NewRecorder()
	e.invoices.Send(rr, request(http.MethodPost, "/", "", target))
	if rr.Code != http.StatusOK {
		t.Fatalf("send code = %d, body = %s", rr.Code, rr.Body.String())
	}
	if len(e.sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(e.sender.sent))
	}
	msg := e.sender.sent[0]
	if msg.Subject != fmt.Sprintf("Invoice %d - 2024-01-15", inv) || len(msg.To) != 2 {
		t.Errorf("message = %+v", msg)
	}

	e.sender.err = fmt.Errorf("dial: %w", models.ErrExternal)
	rr = httptest.NewRecorder()
	e.invoices.Send(rr, request(http.MethodPost, "/", "", target))
	if rr.Code != http.StatusBadGateway {
		t.Errorf("send failure code = %d, want 502", rr.Code)
	}
}

func TestEmailConfig(t *testing.T) {
	e := setup(t)

	rr := httptest.NewRecorder()
	e.email.Get(rr, request(http.MethodGet, "/", "", nil))
	var cfg models.EmailConfig
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != models.DefaultEmailConfig() {
		t.Errorf("Get() = %+v, want defaults", cfg)
	}

	body := `{"smtp_server":"smtp.acme.test","port":465,"tls":true,"username":"billing","password":"s3cret","fromname":"Acme"}`
	rr = httptest.NewRecorder()
	e.email.Put(rr, request(http.MethodPut, "/", body, nil))
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "s3cret") {
		t.Fatalf("Put() code = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	e.email.Put(rr, request(http.MethodPut, "/", `{"smtp_server":"smtp2.acme.test","port":587}`, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Put() code = %d", rr.Code)
	}
	saved, err := e.db.GetEmailConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved.SMTPServer != "smtp2.acme.test" || saved.Password != "s3cret" {
		t.Errorf("saved = %+v, want new server and kept password", saved)
	}

	rr = httptest.NewRecorder()
	e.email.Put(rr, request(http.MethodPut, "/", `{"smtp_server":"","port":0}`, nil))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Put() invalid code = %d, want 422", rr.Code)
	}

	rr = httptest.NewRecorder()
	e.email.Test(rr, request(http.MethodPost, "/", `{"to":"me@acme.test"}`, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Test() code = %d", rr.Code)
	}
	if msg := e.sender.sent[0]; msg.Subject != "Test from Invoice-CLI" || msg.Body != "Test successful!" {
		t.Errorf("test message = %+v", msg)
	}
}

func TestImport(t *testing.T) {
	e := setup(t)
	doc := `{"company":[{"name":"Acme"}],"terms":[{"name":"Net 30","due":30}],"item":[{"name":"A","rate":"1.25"},{"name":"B","rate":"2"}]}`
	rr := httptest.NewRecorder()
	e.imports.Import(rr, request(http.MethodPost, "/", doc, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rr.Code, rr.Body.String())
	}
	var out struct{ Count int }
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 4 {
		t.Errorf("count = %d, want 4", out.Count)
	}

	rr = httptest.NewRecorder()
	e.imports.Import(rr, request(http.MethodPost, "/", `{"item":[{"name":"C","rate":"1"},{"name":"A","rate":"1"}]}`, nil))
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate import code = %d, want 409", rr.Code)
	}
	rows, err := e.db.GetTable(context.Background(), "items")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("items after failed import = %d, want 2", len(rows))
	}
}
