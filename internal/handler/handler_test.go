package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/fishcamp/internal/database"
	"github.com/iliyamo/fishcamp/internal/queue"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/validation"
	"github.com/iliyamo/fishcamp/internal/view"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

type testServer struct {
	e      *echo.Echo
	store  *repository.Store
	events *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := repository.NewSQLStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	events := &recordingPublisher{}
	h := NewCampgroundHandler(store, validation.New(), events)

	e := echo.New()
	e.Renderer = view.MustNew()
	e.HTTPErrorHandler = HTTPErrorHandler(e.Logger)
	e.GET("/campgrounds", h.Index)
	e.POST("/campgrounds", h.Create)
	e.GET("/campgrounds/new", h.New)
	e.GET("/campgrounds/:id", h.Show)
	e.PUT("/campgrounds/:id", h.Update)
	e.DELETE("/campgrounds/:id", h.Delete)
	e.GET("/campgrounds/:id/edit", h.Edit)
	e.POST("/campgrounds/:id/reviews", h.CreateReview)
	e.DELETE("/campgrounds/:id/reviews/:reviewId", h.DeleteReview)
	e.GET("/makecampground", h.MakeCampground)
	e.RouteNotFound("/*", NotFound)
	return &testServer{e: e, store: store, events: events}
}

func (s *testServer) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// create posts a campground form and returns the id from the redirect.
func (s *testServer) create(t *testing.T, form url.Values) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/campgrounds", form)
	if rec.Code != http.StatusFound {
		t.Fatalf("create: status %d, body %q", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get(echo.HeaderLocation)
	id := strings.TrimPrefix(loc, "/campgrounds/")
	if id == "" || id == loc {
		t.Fatalf("create: unexpected redirect %q", loc)
	}
	return id
}

func TestCreateThenShow(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{"campground[title]": {"Lake View"}})

	rec := s.do(http.MethodGet, "/campgrounds/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("show: status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Lake View") {
		t.Errorf("show page does not contain the title")
	}
	if !strings.Contains(body, "No reviews yet.") {
		t.Errorf("show page should render an empty review list")
	}
	if got := s.events.kinds(); len(got) != 1 || got[0] != queue.KindCampgroundCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t, url.Values{"campground[title]": {"One"}})
	b := s.create(t, url.Values{"campground[title]": {"One"}})
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	rec := s.do(http.MethodGet, "/campgrounds", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("index: status %d", rec.Code)
	}
	if n := strings.Count(rec.Body.String(), `href="/campgrounds/`+a+`"`); n == 0 {
		t.Errorf("index does not link to %s", a)
	}
}

func TestCreateJSON(t *testing.T) {
	s := newTestServer(t)
	rec := s.doJSON(http.MethodPost, "/campgrounds",
		`{"campground":{"title":"Pine Flats","location":"Bend, Oregon","price":12.5}}`)
	if rec.Code != http.StatusFound {
		t.Fatalf("status %d, body %q", rec.Code, rec.Body.String())
	}
	id := strings.TrimPrefix(rec.Header().Get(echo.HeaderLocation), "/campgrounds/")
	cg, err := s.store.Campgrounds.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cg.Location != "Bend, Oregon" || cg.Price != 12.5 {
		t.Errorf("stored %+v", cg)
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing title", url.Values{"campground[location]": {"Nowhere"}}, "is required"},
		{"blank title", url.Values{"campground[title]": {"   "}}, "is required"},
		{"price not a number", url.Values{"campground[title]": {"A"}, "campground[price]": {"cheap"}}, "must be a number"},
		{"negative price", url.Values{"campground[title]": {"A"}, "campground[price]": {"-1"}}, "price"},
		{"infinite price", url.Values{"campground[title]": {"A"}, "campground[price]": {"Inf"}}, "must be a number"},
		{"signed infinity", url.Values{"campground[title]": {"A"}, "campground[price]": {"+Infinity"}}, "must be a number"},
		{"NaN price", url.Values{"campground[title]": {"A"}, "campground[price]": {"NaN"}}, "must be a number"},
		{"bad image", url.Values{"campground[title]": {"A"}, "campground[image]": {"not a url"}}, "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(http.MethodPost, "/campgrounds", tc.form)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Errorf("body does not mention %q", tc.want)
			}
			items, err := s.store.Campgrounds.List(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(items) != 0 {
				t.Errorf("invalid payload persisted %d campgrounds", len(items))
			}
			if got := s.events.kinds(); len(got) != 0 {
				t.Errorf("events published for a rejected request: %v", got)
			}
		})
	}
}

func TestCreateRejectsMissingJSONEnvelope(t *testing.T) {
	s := newTestServer(t)
	rec := s.doJSON(http.MethodPost, "/campgrounds", `{"title":"flat"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{
		"campground[title]":    {"Old"},
		"campground[location]": {"Moab, Utah"},
		"campground[price]":    {"20"},
	})

	rec := s.do(http.MethodPut, "/campgrounds/"+id, url.Values{"campground[title]": {"New"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("update: status %d", rec.Code)
	}
	cg, err := s.store.Campgrounds.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cg.Title != "New" {
		t.Errorf("title = %q", cg.Title)
	}
	if cg.Location != "Moab, Utah" || cg.Price != 20 {
		t.Errorf("fields not submitted were changed: %+v", cg)
	}
}

func TestUpdateInvalidLeavesRecord(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{"campground[title]": {"Keep"}})

	rec := s.do(http.MethodPut, "/campgrounds/"+id, url.Values{"campground[location]": {"Elsewhere"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	cg, err := s.store.Campgrounds.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cg.Title != "Keep" || cg.Location != "" {
		t.Errorf("rejected update was applied: %+v", cg)
	}
}

func TestUpdateMissing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPut, "/campgrounds/nope", url.Values{"campground[title]": {"X"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestShowAndEditMissing(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/campgrounds/missing", "/campgrounds/missing/edit"} {
		rec := s.do(http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), CampgroundMissingError) {
			t.Errorf("%s: body lacks not-found message", target)
		}
	}
}

func TestEditPrefills(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{"campground[title]": {"Cedar Hollow"}, "campground[price]": {"7.5"}})
	rec := s.do(http.MethodGet, "/campgrounds/"+id+"/edit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="Cedar Hollow"`) || !strings.Contains(body, `value="7.50"`) {
		t.Errorf("edit form not prefilled")
	}
}

func TestNewForm(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/campgrounds/new", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "campground[title]") {
		t.Fatalf("new form: status %d", rec.Code)
	}
}

func TestReviewLifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := s.create(t, url.Values{"campground[title]": {"Lake View"}})

	rec := s.do(http.MethodPost, "/campgrounds/"+id+"/reviews", url.Values{
		"review[body]":   {"Quiet at night"},
		"review[rating]": {"4"},
	})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/campgrounds/"+id {
		t.Fatalf("create review: status %d, location %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	cg, err := s.store.Campgrounds.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cg.ReviewIDs) != 1 {
		t.Fatalf("review refs = %v, want exactly one", cg.ReviewIDs)
	}
	reviewID := cg.ReviewIDs[0]
	rv, err := s.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if rv.Body != "Quiet at night" || rv.Rating != 4 {
		t.Errorf("stored review %+v", rv)
	}
	if body := s.do(http.MethodGet, "/campgrounds/"+id, nil).Body.String(); !strings.Contains(body, "Quiet at night") {
		t.Errorf("show page does not list the review")
	}

	rec = s.do(http.MethodDelete, "/campgrounds/"+id+"/reviews/"+reviewID, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("delete review: status %d", rec.Code)
	}
	cg, err = s.store.Campgrounds.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cg.ReviewIDs) != 0 {
		t.Errorf("reference not removed: %v", cg.ReviewIDs)
	}
	if _, err := s.store.Reviews.GetByID(ctx, reviewID); !errors.Is(err, repository.ErrReviewNotFound) {
		t.Errorf("deleted review lookup: %v", err)
	}

	rec = s.do(http.MethodDelete, "/campgrounds/"+id+"/reviews/"+reviewID, nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), ReviewMissingError) {
		t.Errorf("second delete: status %d", rec.Code)
	}

	want := []string{queue.KindCampgroundCreated, queue.KindReviewCreated, queue.KindReviewDeleted}
	got := s.events.kinds()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestCreateReviewRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{"campground[title]": {"Lake View"}})
	cases := []url.Values{
		{"review[body]": {"ok"}, "review[rating]": {"9"}},
		{"review[body]": {"ok"}},
		{"review[rating]": {"3"}},
		{"review[body]": {"ok"}, "review[rating]": {"five"}},
	}
	for _, form := range cases {
		rec := s.do(http.MethodPost, "/campgrounds/"+id+"/reviews", form)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: status %d, want 400", form, rec.Code)
		}
	}
	cg, err := s.store.Campgrounds.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cg.ReviewIDs) != 0 {
		t.Errorf("rejected reviews were attached: %v", cg.ReviewIDs)
	}
}

func TestDeleteReviewOfOtherCampground(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	a := s.create(t, url.Values{"campground[title]": {"A"}})
	b := s.create(t, url.Values{"campground[title]": {"B"}})
	s.do(http.MethodPost, "/campgrounds/"+a+"/reviews", url.Values{"review[body]": {"mine"}, "review[rating]": {"5"}})
	cg, err := s.store.Campgrounds.GetByID(ctx, a)
	if err != nil || len(cg.ReviewIDs) != 1 {
		t.Fatalf("setup: %v", err)
	}

	rec := s.do(http.MethodDelete, "/campgrounds/"+b+"/reviews/"+cg.ReviewIDs[0], nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	if _, err := s.store.Reviews.GetByID(ctx, cg.ReviewIDs[0]); err != nil {
		t.Errorf("review deleted through the wrong campground: %v", err)
	}
}

func TestCreateReviewReportsUndecodedRatingOnce(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, url.Values{"campground[title]": {"Lake View"}})
	rec := s.do(http.MethodPost, "/campgrounds/"+id+"/reviews", url.Values{"review[rating]": {"five"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if n := strings.Count(body, "review.rating"); n != 1 {
		t.Errorf("rating reported %d times", n)
	}
	if !strings.Contains(body, "must be a number") || !strings.Contains(body, "review.body") {
		t.Errorf("body lacks the expected violations")
	}
}

func TestMergeSkipsUndecodedFields(t *testing.T) {
	decoded := &validation.Error{Schema: validation.ReviewSchema}
	decoded.Add("rating", "must be a number")
	checked := &validation.Error{Schema: validation.ReviewSchema}
	checked.Add("body", "is required")
	checked.Add("rating", "is required")

	got := merge(decoded, checked)
	want := `"review.rating" must be a number,"review.body" is required`
	if got.Error() != want {
		t.Errorf("merged = %q, want %q", got.Error(), want)
	}
	if merge(nil, nil) != nil {
		t.Error("merge(nil, nil) should be nil")
	}
}

func TestCreateReviewForMissingCampground(t *testing.T) {
	s := newTestServer(t)
	rec := s.doJSON(http.MethodPost, "/campgrounds/missing/reviews", `{"review":{"body":"hi","rating":3}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestDeleteCampgroundKeepsReviews(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	id := s.create(t, url.Values{"campground[title]": {"Gone Soon"}})
	s.do(http.MethodPost, "/campgrounds/"+id+"/reviews", url.Values{"review[body]": {"fine"}, "review[rating]": {"3"}})
	cg, err := s.store.Campgrounds.GetByID(ctx, id)
	if err != nil || len(cg.ReviewIDs) != 1 {
		t.Fatalf("setup: %v %+v", err, cg)
	}

	rec := s.do(http.MethodDelete, "/campgrounds/"+id, nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/campgrounds" {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if strings.Contains(s.do(http.MethodGet, "/campgrounds", nil).Body.String(), "Gone Soon") {
		t.Errorf("deleted campground still listed")
	}
	if _, err := s.store.Reviews.GetByID(ctx, cg.ReviewIDs[0]); err != nil {
		t.Errorf("review should outlive its campground: %v", err)
	}
	if rec := s.do(http.MethodDelete, "/campgrounds/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d", rec.Code)
	}
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/no/such/page", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), PageNotFoundMessage) {
		t.Errorf("body lacks %q", PageNotFoundMessage)
	}
}

func TestErrorHandlerHead(t *testing.T) {
	s := newTestServer(t)
	s.e.HEAD("/campgrounds/:id", func(c echo.Context) error { return repository.ErrCampgroundNotFound })
	rec := s.do(http.MethodHead, "/campgrounds/x", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response has a body")
	}
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	s := newTestServer(t)
	s.e.GET("/boom", func(c echo.Context) error { return errors.New("dsn user:secret") })
	rec := s.do(http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "secret") || !strings.Contains(body, DefaultErrorMessage) {
		t.Errorf("internal error leaked or default message missing")
	}
}

func TestClassify(t *testing.T) {
	verr := &validation.Error{Schema: validation.CampgroundSchema}
	verr.Add("title", "is required")
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{verr, http.StatusBadRequest, `"campground.title" is required`},
		{repository.ErrCampgroundNotFound, http.StatusNotFound, CampgroundMissingError},
		{repository.ErrReviewNotFound, http.StatusNotFound, ReviewMissingError},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
		{echo.NewHTTPError(http.StatusBadGateway), http.StatusBadGateway, http.StatusText(http.StatusBadGateway)},
		{errors.New("boom"), http.StatusInternalServerError, DefaultErrorMessage},
	}
	for _, tc := range cases {
		status, msg := classify(tc.err)
		if status != tc.status || msg != tc.msg {
			t.Errorf("classify(%v) = %d %q, want %d %q", tc.err, status, msg, tc.status, tc.msg)
		}
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	s := newTestServer(t)
	s.events.err = errors.New("broker down")
	var buf bytes.Buffer
	s.e.Logger.SetOutput(&buf)
	s.e.Logger.SetLevel(glog.WARN)

	s.create(t, url.Values{"campground[title]": {"Still Works"}})
	if n := strings.Count(buf.String(), "not published"); n != 1 {
		t.Errorf("publish failure logged %d times: %q", n, buf.String())
	}
}

func TestMakeCampground(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/makecampground", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"title":"My Backyard"`) {
		t.Errorf("body %q", rec.Body.String())
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("no route to host"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.err
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			if herr := Health(pingFunc(func(context.Context) error { return err }))(e.NewContext(req, rec)); herr != nil {
				t.Fatalf("handler error: %v", herr)
			}
			if rec.Code != tc.status {
				t.Errorf("status %d, want %d", rec.Code, tc.status)
			}
		})
	}
}
