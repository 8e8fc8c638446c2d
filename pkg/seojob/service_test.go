package seojob_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
)

func TestEnqueueForApproved_IsIdempotent(t *testing.T) {
	f := newFixture()
	f.addCollections(3)
	f.store.PutContent(seojob.Content{ID: "draft", Kind: seojob.KindCollection, Title: "draft"}, false)
	ctx := context.Background()

	n, err := f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	if err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 inserted, got %d", n)
	}

	n, err = f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 inserted on second call, got %d", n)
	}
	if f.jobFor(seojob.KindCollection, "draft") != nil {
		t.Fatal("unapproved content must not be queued")
	}
}

func TestEnqueueForApproved_NoContentIsNotAnError(t *testing.T) {
	f := newFixture()
	n, err := f.svc.EnqueueForApproved(context.Background(), seojob.KindProfile)
	if err != nil || n != 0 {
		t.Fatalf("expected (0, nil), got (%d, %v)", n, err)
	}
}

func TestEnqueue_NeverDuplicatesActiveJobs(t *testing.T) {
	f := newFixture()
	f.addCollections(1)
	ctx := context.Background()
	gc := seojob.GenerationContext{Title: "c1"}

	if ok, err := f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", gc); err != nil || !ok {
		t.Fatalf("first EnqueueOne: ok=%v err=%v", ok, err)
	}
	if ok, _ := f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", gc); ok {
		t.Fatal("second EnqueueOne must be skipped while pending")
	}

	if _, err := f.svc.ProcessBatch(ctx, 10); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if ok, _ := f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", gc); ok {
		t.Fatal("EnqueueOne must be skipped while completed")
	}
	if n, _ := f.svc.EnqueueForApproved(ctx, seojob.KindCollection); n != 0 {
		t.Fatalf("bulk enqueue must skip completed targets, inserted %d", n)
	}

	if got := len(f.store.Jobs()); got != 1 {
		t.Fatalf("expected exactly one job row, got %d", got)
	}
}

func TestEnqueueOne_ResetsFailedRowInPlace(t *testing.T) {
	f := newFixture()
	f.addCollections(1)
	f.gen.failOn["c1"] = true
	ctx := context.Background()

	f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1"})
	f.svc.ProcessBatch(ctx, 1)

	failed := f.jobFor(seojob.KindCollection, "c1")
	if failed.Status != seojob.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}

	ok, err := f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1 v2"})
	if err != nil || !ok {
		t.Fatalf("expected failed row to be reset, ok=%v err=%v", ok, err)
	}

	jobs := f.store.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("expected one row, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != failed.ID || j.Status != seojob.StatusPending || j.ErrorMessage != "" || j.Context.Title != "c1 v2" {
		t.Fatalf("unexpected reset row: %+v", j)
	}
}

func TestEnqueueOne_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.EnqueueOne(ctx, seojob.TargetKind("podcast"), "x", seojob.GenerationContext{})
	if !errx.HasCode(err, seojob.CodeInvalidKind) {
		t.Fatalf("expected INVALID_KIND, got %v", err)
	}
	_, err = f.svc.EnqueueOne(ctx, seojob.KindItem, "  ", seojob.GenerationContext{})
	if !errx.HasCode(err, seojob.CodeInvalidTarget) {
		t.Fatalf("expected INVALID_TARGET, got %v", err)
	}
}

func TestEnqueueOne_DeletedTargetCreatesNoOrphan(t *testing.T) {
	f := newFixture()
	ok, err := f.svc.EnqueueOne(context.Background(), seojob.KindItem, "gone", seojob.GenerationContext{Title: "gone"})
	if err != nil || ok {
		t.Fatalf("expected skip for missing target, ok=%v err=%v", ok, err)
	}
	if len(f.store.Jobs()) != 0 {
		t.Fatal("no job row should exist for a missing target")
	}
}

func TestEnqueueTarget(t *testing.T) {
	f := newFixture()
	f.store.PutContent(seojob.Content{
		ID:          "p1",
		Kind:        seojob.KindProfile,
		Title:       "Ada",
		Description: "Engineer",
		RelatedInfo: map[string]any{"role": "author"},
	}, true)
	ctx := context.Background()

	ok, err := f.svc.EnqueueTarget(ctx, seojob.KindProfile, "p1")
	if err != nil || !ok {
		t.Fatalf("EnqueueTarget: ok=%v err=%v", ok, err)
	}
	j := f.jobFor(seojob.KindProfile, "p1")
	if j.Context.Title != "Ada" || j.Context.ContentKind != "Profile" || j.Context.RelatedInfo["role"] != "author" {
		t.Fatalf("context not captured from record: %+v", j.Context)
	}

	_, err = f.svc.EnqueueTarget(ctx, seojob.KindProfile, "p404")
	if !errx.HasCode(err, seojob.CodeTargetNotFound) {
		t.Fatalf("expected TARGET_NOT_FOUND, got %v", err)
	}
}

func TestEnqueueMissing_ThenProcessInTwoBatches(t *testing.T) {
	f := newFixture()
	f.addCollections(3)
	ctx := context.Background()

	res, err := f.svc.EnqueueMissing(ctx, seojob.KindCollection)
	if err != nil {
		t.Fatalf("EnqueueMissing: %v", err)
	}
	if res.Inserted != 3 || res.Total != 3 {
		t.Fatalf("expected inserted=3 total=3, got %+v", res)
	}

	first, err := f.svc.ProcessBatch(ctx, 2)
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if first.Succeeded != 2 || first.Failed != 0 {
		t.Fatalf("unexpected first batch: %+v", first)
	}

	stats, _ := f.svc.GetStats(ctx)
	cs := stats.ForKind(seojob.KindCollection)
	if cs.Completed != 2 || cs.Pending != 1 {
		t.Fatalf("expected 2 completed / 1 pending, got %+v", cs)
	}

	second, err := f.svc.ProcessBatch(ctx, 2)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if second.Succeeded != 1 || second.Claimed != 1 {
		t.Fatalf("expected succeeded=1, got %+v", second)
	}

	res, _ = f.svc.EnqueueMissing(ctx, seojob.KindCollection)
	if res.Inserted != 0 || res.Total != 0 {
		t.Fatalf("nothing should be missing now, got %+v", res)
	}
}

func TestRegenerateOne(t *testing.T) {
	f := newFixture()
	f.addCollections(1)
	ctx := context.Background()

	f.svc.EnqueueOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1"})
	f.svc.ProcessBatch(ctx, 1)

	ok, err := f.svc.RegenerateOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1", AdditionalContext: "seasonal"})
	if err != nil || !ok {
		t.Fatalf("expected completed job to be regenerated, ok=%v err=%v", ok, err)
	}
	j := f.jobFor(seojob.KindCollection, "c1")
	if j.Status != seojob.StatusPending || j.Context.AdditionalContext != "seasonal" {
		t.Fatalf("unexpected job after regenerate: %+v", j)
	}

	if claimed, _ := f.store.Claim(ctx, j.ID); !claimed {
		t.Fatal("expected to claim regenerated job")
	}
	ok, err = f.svc.RegenerateOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1"})
	if err != nil || ok {
		t.Fatalf("processing job must not be reset, ok=%v err=%v", ok, err)
	}
	if got := f.jobFor(seojob.KindCollection, "c1").Status; got != seojob.StatusProcessing {
		t.Fatalf("expected processing, got %s", got)
	}
}

func TestRequeuedTargetsQueueBehindPendingWork(t *testing.T) {
	f := newFixture()
	f.addCollections(2)
	f.gen.failOn["c2"] = true
	ctx := context.Background()

	f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	f.svc.ProcessBatch(ctx, 2)

	f.store.PutContent(seojob.Content{ID: "c3", Kind: seojob.KindCollection, Title: "c3"}, true)
	f.svc.EnqueueOne(ctx, seojob.KindCollection, "c3", seojob.GenerationContext{Title: "c3"})

	// c1 completed, c2 failed; both re-enter after c3.
	if ok, _ := f.svc.RegenerateOne(ctx, seojob.KindCollection, "c1", seojob.GenerationContext{Title: "c1"}); !ok {
		t.Fatal("regenerate c1 failed")
	}
	if ok, _ := f.svc.EnqueueOne(ctx, seojob.KindCollection, "c2", seojob.GenerationContext{Title: "c2"}); !ok {
		t.Fatal("re-enqueue c2 failed")
	}

	pending, err := f.store.ListPending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, j := range pending {
		order = append(order, j.TargetID)
	}
	if strings.Join(order, ",") != "c3,c1,c2" {
		t.Fatalf("expected re-entered jobs behind c3, got %v", order)
	}
}

func TestRequeueFailed_ResetsCleanly(t *testing.T) {
	f := newFixture()
	f.addCollections(2)
	f.gen.failOn["c2"] = true
	ctx := context.Background()

	f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	f.svc.ProcessBatch(ctx, 10)

	n, err := f.svc.RequeueFailed(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 requeued, got %d (%v)", n, err)
	}
	j := f.jobFor(seojob.KindCollection, "c2")
	if j.Status != seojob.StatusPending || j.ErrorMessage != "" {
		t.Fatalf("unexpected requeued job: %+v", j)
	}

	delete(f.gen.failOn, "c2")
	res, _ := f.svc.ProcessBatch(ctx, 10)
	if res.Succeeded != 1 {
		t.Fatalf("requeued job should be claimable again, got %+v", res)
	}
	if f.jobFor(seojob.KindCollection, "c1").Status != seojob.StatusCompleted {
		t.Fatal("completed job must not be touched by requeue")
	}
}

func TestRequeueStale(t *testing.T) {
	f := newFixture()
	f.addCollections(2)
	ctx := context.Background()

	f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	stuck := f.jobFor(seojob.KindCollection, "c1")
	if ok, _ := f.store.Claim(ctx, stuck.ID); !ok {
		t.Fatal("claim failed")
	}

	if n, _ := f.svc.RequeueStale(ctx, 15*time.Minute); n != 0 {
		t.Fatalf("fresh processing job must not be requeued, got %d", n)
	}

	f.clock.Advance(20 * time.Minute)
	n, err := f.svc.RequeueStale(ctx, 0)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 stale job requeued with default threshold, got %d (%v)", n, err)
	}
	if f.jobFor(seojob.KindCollection, "c1").Status != seojob.StatusPending {
		t.Fatal("stale job should be pending again")
	}
	if f.jobFor(seojob.KindCollection, "c2").Status != seojob.StatusPending {
		t.Fatal("untouched pending job changed state")
	}
}

func TestGetStats(t *testing.T) {
	f := newFixture()
	f.addCollections(3)
	f.store.PutContent(seojob.Content{ID: "i1", Kind: seojob.KindItem, Title: "i1"}, true)
	f.store.PutContent(seojob.Content{ID: "i2", Kind: seojob.KindItem, Title: "i2"}, false)
	f.gen.failOn["c3"] = true
	ctx := context.Background()

	f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	f.svc.ProcessBatch(ctx, 10)
	f.svc.EnqueueForApproved(ctx, seojob.KindItem)

	stats, err := f.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if len(stats.Kinds) != 3 {
		t.Fatalf("expected every kind in stats, got %d", len(stats.Kinds))
	}

	cs := stats.ForKind(seojob.KindCollection)
	if cs.Completed != 2 || cs.Failed != 1 || cs.TotalJobs != 3 || cs.TotalContent != 3 {
		t.Fatalf("unexpected collection stats: %+v", cs)
	}
	is := stats.ForKind(seojob.KindItem)
	if is.Pending != 1 || is.TotalJobs != 1 || is.TotalContent != 2 {
		t.Fatalf("unexpected item stats: %+v", is)
	}
	ps := stats.ForKind(seojob.KindProfile)
	if ps.TotalJobs != 0 || ps.TotalContent != 0 {
		t.Fatalf("unexpected profile stats: %+v", ps)
	}
}

func TestListJobs(t *testing.T) {
	f := newFixture()
	f.addCollections(5)
	f.gen.failOn["c1"] = true
	ctx := context.Background()

	f.svc.EnqueueForApproved(ctx, seojob.KindCollection)
	f.svc.ProcessBatch(ctx, 1)

	page, err := f.svc.ListJobs(ctx, seojob.JobFilter{Kind: seojob.KindCollection}, kernel.PaginationOptions{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if page.Page.Total != 5 || len(page.Items) != 2 || !page.HasNext() {
		t.Fatalf("unexpected page: %+v", page.Page)
	}

	failed, _ := f.svc.ListJobs(ctx, seojob.JobFilter{Status: seojob.StatusFailed}, kernel.PaginationOptions{})
	if failed.Page.Total != 1 || failed.Items[0].TargetID != "c1" {
		t.Fatalf("unexpected failed listing: %+v", failed)
	}

	got, err := f.svc.GetJob(ctx, failed.Items[0].ID)
	if err != nil || got.ErrorMessage == "" {
		t.Fatalf("GetJob: %+v, %v", got, err)
	}

	_, err = f.svc.ListJobs(ctx, seojob.JobFilter{Status: "stuck"}, kernel.PaginationOptions{})
	if !errx.HasCode(err, seojob.CodeInvalidStatus) {
		t.Fatalf("expected INVALID_STATUS, got %v", err)
	}
}

func TestParseTargetKind(t *testing.T) {
	cases := map[string]seojob.TargetKind{
		"collection":  seojob.KindCollection,
		"Collections": seojob.KindCollection,
		"items":       seojob.KindItem,
		" profile ":   seojob.KindProfile,
	}
	for in, want := range cases {
		got, err := seojob.ParseTargetKind(in)
		if err != nil || got != want {
			t.Errorf("ParseTargetKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := seojob.ParseTargetKind("podcast"); !errx.HasCode(err, seojob.CodeInvalidKind) {
		t.Errorf("expected INVALID_KIND, got %v", err)
	}
}
