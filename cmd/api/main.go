package main

import (
	"context"
	"log"

	"github.com/click-call/click-call-backend/config"
	"github.com/click-call/click-call-backend/internal/auth"
	"github.com/click-call/click-call-backend/internal/bootstrap"
	"github.com/click-call/click-call-backend/internal/callsession"
	sessionrepo "github.com/click-call/click-call-backend/internal/callsession/repository"
	"github.com/click-call/click-call-backend/internal/feedback"
	"github.com/click-call/click-call-backend/internal/projects/repository"
	"github.com/click-call/click-call-backend/internal/projects/service"
	"github.com/click-call/click-call-backend/internal/projects/syncjob"
	"github.com/click-call/click-call-backend/internal/storage/localstore"
	"github.com/click-call/click-call-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	slots, err := localstore.New(cfg.App.DataDir)
	if err != nil {
		log.Fatalf("local store: %v", err)
	}
	local := repository.NewLocalStore(slots)

	// Backend selection happens once, here. Remote when DB_DSN is set,
	// local otherwise; reads fall back to local either way.
	var (
		remote repository.RemoteStore
		sink   feedback.Sink = feedback.NewLocalSink(slots)
	)
	deps := bootstrap.RouterDeps{
		ServiceName:   "click-call-backend",
		Version:       cfg.App.Version,
		CanonicalHost: cfg.App.CanonicalHost,
		AllowOrigins:  cfg.App.AllowOrigins,
	}

	if cfg.RemoteConfigured() {
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
		remote = repository.NewPostgresStore(pool)
		deps.DB = pool

		sqlDB, err := postgres.NewConnection(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("feedback db: %v", err)
		}
		defer sqlDB.Close()
		sink = feedback.NewPostgresSink(sqlDB)

		log.Println("project store: remote backend")
	} else {
		log.Println("project store: local backend (DB_DSN not set)")
	}

	projects := service.New(remote, local)

	var snapshots callsession.SnapshotStore
	if cfg.Redis.Addr != "" {
		rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		snapshots = sessionrepo.NewSessionRepo(rdb)
		deps.Redis = rdb
	}

	sessions := callsession.NewManager(
		callsession.Deps{
			Sink:   sink,
			Voices: callsession.StaticVoices{{Name: "default", Lang: cfg.Call.VoiceLocale}},
		},
		callsession.Options{
			RingDelay:          cfg.Call.RingDelay,
			FeedbackResetDelay: cfg.Call.FeedbackResetDelay,
			RingtoneURL:        cfg.Call.RingtoneURL,
			VoiceLocale:        cfg.Call.VoiceLocale,
		},
		snapshots,
	)
	defer sessions.Shutdown()
	deps.Sessions = sessions

	deps.Gate = auth.NewGate(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.SessionTTL)
	deps.Projects = projects

	if cfg.App.SyncSchedule != "" && projects.RemoteEnabled() {
		sched := syncjob.New(projects)
		if err := sched.Start(cfg.App.SyncSchedule); err != nil {
			log.Fatalf("sync scheduler: %v", err)
		}
		defer sched.Stop()
	}

	r := bootstrap.BuildRouter(deps)
	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
