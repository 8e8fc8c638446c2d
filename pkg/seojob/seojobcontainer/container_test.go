package seojobcontainer

import (
	"context"
	"testing"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.SEOJob.Store = "memory"
	cfg.SEOJob.AutoEnqueue = true
	return cfg
}

func TestNew_MemoryStoreEndToEnd(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)

	gen := seojob.GeneratorFunc(func(_ context.Context, gc seojob.GenerationContext) (seojob.Metadata, error) {
		return seojob.Metadata{Title: gc.Title, Description: "d", Slug: gc.Title}, nil
	})

	c, err := New(context.Background(), Deps{Cfg: memoryConfig(t), Archive: fs, Generator: gen})
	require.NoError(t, err)
	require.NotNil(t, c.Memory)
	require.NotNil(t, c.Archiver)
	require.NoError(t, c.Ping(context.Background()))

	c.Memory.PutContent(seojob.Content{ID: "c1", Kind: seojob.KindCollection, Title: "Jazz"}, true)

	report, err := c.Scheduler.Tick(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Enqueued[seojob.KindCollection])
	assert.Equal(t, 1, report.Result.Succeeded)

	ids, err := c.Archiver.List(context.Background(), report.StartedAt)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, report.ID, ids[0])
}

func TestNew_RequiresDatabaseForPostgres(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.SEOJob.Store = "postgres"
	_, err := New(context.Background(), Deps{Cfg: cfg, Generator: seojob.GeneratorFunc(nil)})
	require.Error(t, err)

	cfg.SEOJob.Store = "sqlite"
	_, err = New(context.Background(), Deps{Cfg: cfg})
	require.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	cfg := config.GeneratorConfig{Provider: "openai", APIKey: "k", Model: "gpt-test", MaxTokens: 100}
	g, err := NewGenerator(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Provider())
	assert.Equal(t, "gpt-test", g.Model())

	cfg.Provider = "anthropic"
	cfg.Model = ""
	g, err = NewGenerator(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", g.Model())

	cfg.Provider = "azure"
	_, err = NewGenerator(context.Background(), cfg, nil)
	assert.True(t, errx.HasCode(err, metagen.CodeMissingConfig))

	cfg.Provider = "cohere"
	_, err = NewGenerator(context.Background(), cfg, nil)
	assert.True(t, errx.HasCode(err, metagen.CodeUnknownProvider))
}
