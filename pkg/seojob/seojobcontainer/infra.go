package seojobcontainer

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/seoqueue/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Infra is the shared infrastructure both binaries open: database, Redis
// and the report archive file system. Every field may be nil when the
// configuration leaves it out.
type Infra struct {
	DB      *sqlx.DB
	Redis   *redis.Client
	Archive fsx.FileSystem
}

// OpenInfra connects everything cfg enables.
func OpenInfra(ctx context.Context, cfg *config.Config) (*Infra, error) {
	infra := &Infra{}

	if cfg.SEOJob.Store != "memory" {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
		if err != nil {
			return nil, errx.Wrap(err, "failed to connect to database", errx.TypeInternal)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		infra.DB = db
		logx.Info("  ✅ Database connected")
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			infra.Close()
			return nil, errx.Wrap(err, "failed to connect to Redis", errx.TypeInternal).
				WithDetail("addr", cfg.Redis.Address())
		}
		infra.Redis = rdb
		logx.Info("  ✅ Redis connected")
	}

	if cfg.Archive.Enabled() {
		fs, err := openArchive(ctx, cfg.Archive)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Archive = fs
	}

	return infra, nil
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig) (fsx.FileSystem, error) {
	switch cfg.Backend {
	case "s3":
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, errx.Wrap(err, "unable to load AWS SDK config", errx.TypeInternal)
		}
		logx.Infof("  ✅ S3 report archive configured (bucket: %s, region: %s)", cfg.Bucket, cfg.Region)
		return fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil

	case "local":
		fs, err := fsxlocal.NewLocalFileSystem(cfg.Dir)
		if err != nil {
			return nil, err
		}
		logx.Infof("  ✅ Local report archive configured (path: %s)", fs.BasePath())
		return fs, nil

	default:
		return nil, errx.New("unknown archive backend", errx.TypeValidation).
			WithDetail("backend", cfg.Backend)
	}
}

// Close releases every open connection.
func (i *Infra) Close() {
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}
}
