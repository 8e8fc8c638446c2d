package seojobapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/operator"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobapi"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobmemory"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app   *fiber.App
	store *seojobmemory.Store
}

func echoGenerator() seojob.Generator {
	return seojob.GeneratorFunc(func(_ context.Context, gc seojob.GenerationContext) (seojob.Metadata, error) {
		return seojob.Metadata{
			Title:       gc.Title,
			Description: "About " + gc.Title,
			Slug:        gc.Title,
		}, nil
	})
}

func newFixture(t *testing.T, verifier *operator.Verifier, reports seojobapi.ReportReader) *fixture {
	t.Helper()
	store := seojobmemory.NewStore()
	for i := 1; i <= 3; i++ {
		store.PutContent(seojob.Content{
			ID:    fmt.Sprintf("c%d", i),
			Kind:  seojob.KindCollection,
			Title: fmt.Sprintf("Collection %d", i),
		}, true)
	}

	svc := seojob.NewService(store, store, echoGenerator())
	app := fiber.New(fiber.Config{ErrorHandler: seojobapi.ErrorHandler})
	seojobapi.NewHandlers(svc, operator.NewMiddleware(verifier), reports).RegisterRoutes(app)
	return &fixture{app: app, store: store}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestEnqueueMissingAndProcess(t *testing.T) {
	f := newFixture(t, nil, nil)

	status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collections/missing", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["inserted"])
	assert.EqualValues(t, 3, body["total"])

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/approved", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["inserted"])

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/process?batch_size=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["claimed"])
	assert.EqualValues(t, 2, body["succeeded"])

	status, body = f.do(t, http.MethodGet, "/api/v1/seo/jobs/stats", "")
	require.Equal(t, http.StatusOK, status)
	kinds, _ := body["kinds"].([]any)
	require.NotEmpty(t, kinds)
	first, _ := kinds[0].(map[string]any)
	assert.Equal(t, "collection", first["kind"])
	assert.EqualValues(t, 2, first["completed"])
	assert.EqualValues(t, 1, first["pending"])
}

func TestEnqueueOne(t *testing.T) {
	f := newFixture(t, nil, nil)

	status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/target/c1", `{"additional_context":"mention vinyl"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["queued"])

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/target/c1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["queued"])

	jobs := f.store.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "Collection 1", jobs[0].Context.Title)
	assert.Equal(t, "mention vinyl", jobs[0].Context.AdditionalContext)

	// an explicit context does not create a job for a record that does not exist
	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/item/target/i9", `{"title":"Explicit item"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["queued"])
	assert.Len(t, f.store.Jobs(), 1)

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/target/c404", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SEOJOB_TARGET_NOT_FOUND", body["code"])
}

func TestEnqueueOne_IDsMatchingBulkRoutes(t *testing.T) {
	f := newFixture(t, nil, nil)
	for _, id := range []string{"approved", "missing"} {
		f.store.PutContent(seojob.Content{ID: id, Kind: seojob.KindCollection, Title: "Named " + id}, true)
	}

	for _, id := range []string{"approved", "missing"} {
		status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/target/"+id, "")
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, true, body["queued"])
	}
	assert.Len(t, f.store.Jobs(), 2)
}

func TestRegenerate(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/target/c1", "")
	f.do(t, http.MethodPost, "/api/v1/seo/jobs/process?batch_size=5", "")

	status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/regenerate/collection/c1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["queued"])
	assert.Equal(t, seojob.StatusPending, f.store.Jobs()[0].Status)
}

func TestListAndGetJobs(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/collection/missing", "")

	status, body := f.do(t, http.MethodGet, "/api/v1/seo/jobs?kind=collection&status=pending&page_size=2", "")
	require.Equal(t, http.StatusOK, status)
	items, _ := body["items"].([]any)
	assert.Len(t, items, 2)
	pagination, _ := body["pagination"].(map[string]any)
	assert.EqualValues(t, 3, pagination["total"])

	id := f.store.Jobs()[0].ID
	status, body = f.do(t, http.MethodGet, "/api/v1/seo/jobs/"+id.String(), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id.String(), body["id"])

	status, body = f.do(t, http.MethodGet, "/api/v1/seo/jobs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SEOJOB_JOB_NOT_FOUND", body["code"])

	status, _ = f.do(t, http.MethodGet, "/api/v1/seo/jobs/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidationErrors(t *testing.T) {
	f := newFixture(t, nil, nil)

	status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/enqueue/playlists/missing", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SEOJOB_INVALID_KIND", body["code"])

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/process?batch_size=0", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SEOJOB_INVALID_BATCH_SIZE", body["code"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/seo/jobs/requeue-stale?older_than=soon", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodGet, "/api/v1/seo/jobs?status=done", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SEOJOB_INVALID_STATUS", body["code"])
}

func TestRequeue(t *testing.T) {
	f := newFixture(t, nil, nil)

	status, body := f.do(t, http.MethodPost, "/api/v1/seo/jobs/requeue-failed", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["requeued"])

	status, body = f.do(t, http.MethodPost, "/api/v1/seo/jobs/requeue-stale?older_than=1h", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["requeued"])
}

func TestRequiresOperatorToken(t *testing.T) {
	f := newFixture(t, operator.NewVerifier("secret", ""), nil)

	status, body := f.do(t, http.MethodGet, "/api/v1/seo/jobs/stats", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "OPERATOR_MISSING_TOKEN", body["code"])
}

type stubReports struct {
	report *seojob.BatchReport
}

func (s *stubReports) List(_ context.Context, day time.Time) ([]uuid.UUID, error) {
	if day.Equal(s.report.StartedAt.Truncate(24 * time.Hour)) {
		return []uuid.UUID{s.report.ID}, nil
	}
	return nil, nil
}

func (s *stubReports) Load(_ context.Context, _ time.Time, id uuid.UUID) (*seojob.BatchReport, error) {
	if id != s.report.ID {
		return nil, errx.New("report not found", errx.TypeNotFound)
	}
	return s.report, nil
}

func TestReports(t *testing.T) {
	report := &seojob.BatchReport{
		ID:        uuid.New(),
		StartedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Result:    seojob.BatchResult{Claimed: 2, Succeeded: 2},
	}
	f := newFixture(t, nil, &stubReports{report: report})

	status, body := f.do(t, http.MethodGet, "/api/v1/seo/reports/2025-03-01", "")
	require.Equal(t, http.StatusOK, status)
	ids, _ := body["reports"].([]any)
	assert.Equal(t, []any{report.ID.String()}, ids)

	status, body = f.do(t, http.MethodGet, "/api/v1/seo/reports/2025-03-01/"+report.ID.String(), "")
	require.Equal(t, http.StatusOK, status)
	result, _ := body["result"].(map[string]any)
	assert.EqualValues(t, 2, result["claimed"])

	status, _ = f.do(t, http.MethodGet, "/api/v1/seo/reports/march", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
