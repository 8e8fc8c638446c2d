package seojobarchive_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobarchive"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(at time.Time) *seojob.BatchReport {
	return &seojob.BatchReport{
		ID:         uuid.New(),
		StartedAt:  at,
		FinishedAt: at.Add(2 * time.Second),
		Enqueued:   map[seojob.TargetKind]int{seojob.KindCollection: 3},
		Result: seojob.BatchResult{
			Claimed:   3,
			Succeeded: 2,
			Failed:    1,
			Errors:    []string{"c3: Metadata generation failed"},
		},
	}
}

func TestArchiver_RoundTrip(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)
	a := seojobarchive.New(fs)
	ctx := context.Background()

	day := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	report := sampleReport(day)
	require.NoError(t, a.Archive(ctx, report))

	assert.Equal(t, "2025/03/01/"+report.ID.String()+".json", seojobarchive.ReportPath(report))

	ids, err := a.List(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{report.ID}, ids)

	loaded, err := a.Load(ctx, day, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Result, loaded.Result)
	assert.Equal(t, 3, loaded.Enqueued[seojob.KindCollection])
}

func TestArchiver_LoadMissing(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)
	a := seojobarchive.New(fs)

	_, err = a.Load(context.Background(), time.Now(), uuid.New())
	assert.True(t, errx.HasCode(err, fsx.CodeFileNotFound))
}

type flakyFS struct {
	fsx.FileSystem
	failures int32
	calls    atomic.Int32
}

func (f *flakyFS) WriteFile(ctx context.Context, path string, data []byte) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("transient")
	}
	return f.FileSystem.WriteFile(ctx, path, data)
}

func TestArchiver_RetriesTransientWrites(t *testing.T) {
	local, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)
	fs := &flakyFS{FileSystem: local, failures: 2}
	a := seojobarchive.New(fs, seojobarchive.WithRetry(3, time.Millisecond))

	require.NoError(t, a.Archive(context.Background(), sampleReport(time.Now())))
	assert.Equal(t, int32(3), fs.calls.Load())
}

func TestArchiver_GivesUp(t *testing.T) {
	local, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)
	fs := &flakyFS{FileSystem: local, failures: 10}
	a := seojobarchive.New(fs, seojobarchive.WithRetry(2, time.Millisecond))

	err = a.Archive(context.Background(), sampleReport(time.Now()))
	require.Error(t, err)
	assert.Equal(t, int32(2), fs.calls.Load())
}
