package database

import (
	"context"
	"time"

	"github.com/foodgram/backend/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Task is a periodic maintenance job
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// PoolStatsTask publishes the connection pool gauges of db under name
func PoolStatsTask(name string, db *gorm.DB) Task {
	return Task{
		Name: "pool_stats",
		Run: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			stats := sqlDB.Stats()
			metrics.DBOpenConns.WithLabelValues(name).Set(float64(stats.OpenConnections))
			metrics.DBIdleConns.WithLabelValues(name).Set(float64(stats.Idle))
			metrics.DBInUseConns.WithLabelValues(name).Set(float64(stats.InUse))
			return nil
		},
	}
}

// RunMaintenance runs tasks every interval until ctx is cancelled
func RunMaintenance(ctx context.Context, log *zap.Logger, interval time.Duration, tasks ...Task) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		for _, task := range tasks {
			if err := task.Run(ctx); err != nil {
				log.Warn("maintenance task failed", zap.String("task", task.Name), zap.Error(err))
			}
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
