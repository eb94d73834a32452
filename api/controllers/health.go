package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Brooksey3011/military-tees-uk/api/responses"
	"github.com/Brooksey3011/military-tees-uk/pkg/config"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

const envHeader = "X-MTUK-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" is unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadyDeps assembles the readiness probe dependency set.
func ReadyDeps(db pinger, redis pinger) map[string]pinger {
	return map[string]pinger{
		"database": db,
		"redis":    redis,
	}
}
