package services

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/freshersjob/freshersjob/internal/config"
	"github.com/freshersjob/freshersjob/internal/db"
	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/freshersjob/freshersjob/internal/services/user"
	"github.com/freshersjob/freshersjob/internal/services/views"
	"github.com/freshersjob/freshersjob/internal/storage"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	StorageSupabase = "supabase"
	StorageDisk     = "disk"
)

type Services struct {
	DB          persistence.Gateway
	User        *user.UserService
	Profile     *profile.ProfileService
	Job         *job.JobService
	Application *application.ApplicationService
	SavedJob    *savedjob.SavedJobService
	Views       *views.ViewService
	Uploader    *storage.Uploader

	// UploadDir is set when uploads are kept on local disk and served by the API.
	UploadDir string
}

func NewServices(conf *config.Config, store string) (*Services, error) {
	var gateway persistence.Gateway
	switch store {
	case "", StorePostgres:
		gateway = persistence.NewSQLGateway(db.NewConn(conf))
	case StoreMemory:
		slog.Warn("Using the in-memory store, data is lost on restart")
		gateway = persistence.NewMemoryGatewayWithSchema()
	default:
		return nil, fmt.Errorf("unknown store %q", store)
	}

	svc := NewServicesWithGateway(gateway)

	switch conf.STORAGE_BACKEND {
	case StorageSupabase:
		if conf.SUPABASE_URL == "" || conf.SUPABASE_SERVICE_KEY == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the %s storage backend", StorageSupabase)
		}
		svc.Uploader = storage.NewUploader(
			storage.NewSupabaseStore(conf.SUPABASE_URL, conf.SUPABASE_SERVICE_KEY),
			storage.Buckets{Photo: conf.SUPABASE_PROFILE_BUCKET, Document: conf.SUPABASE_RESUME_BUCKET},
		)
	case "", StorageDisk:
		if err := os.MkdirAll(conf.UPLOAD_DIR, 0755); err != nil {
			slog.Warn("Failed to create upload directory", slog.String("path", conf.UPLOAD_DIR), slog.Any("error", err))
		}
		svc.UploadDir = conf.UPLOAD_DIR
		svc.Uploader = storage.NewUploader(
			storage.NewDiskStore(conf.UPLOAD_DIR, conf.PUBLIC_BASE_URL),
			storage.Buckets{Photo: conf.SUPABASE_PROFILE_BUCKET, Document: conf.SUPABASE_RESUME_BUCKET},
		)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", conf.STORAGE_BACKEND)
	}

	slog.Info("Services initialized", slog.String("store", store), slog.String("storage", conf.STORAGE_BACKEND))
	return svc, nil
}

// NewServicesWithGateway wires every entity service over one gateway. Uploads are left unconfigured.
func NewServicesWithGateway(gateway persistence.Gateway) *Services {
	profiles := profile.NewProfileService(profile.NewProfileRepo(gateway))
	jobRepo := job.NewJobRepo(gateway)
	jobs := job.NewJobService(jobRepo, profiles)
	applications := application.NewApplicationService(application.NewApplicationRepo(gateway), jobRepo, profiles)
	saved := savedjob.NewSavedJobService(savedjob.NewSavedJobRepo(gateway), jobs)

	return &Services{
		DB:          gateway,
		User:        user.NewUserService(user.NewUserRepo(gateway), profiles),
		Profile:     profiles,
		Job:         jobs,
		Application: applications,
		SavedJob:    saved,
		Views:       views.NewViewService(gateway, profiles, jobs, applications, saved),
	}
}
