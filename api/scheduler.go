/*
scheduler.go - Background rollup maintenance

PURPOSE:
  The per-user sprout rollup is refreshed synchronously on every ledger
  mutation, but a refresh can be lost if the process dies between the ledger
  write and the rollup write. This scheduler re-materializes every rollup on
  a cron interval so such drift heals itself.
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RollupRefresher is implemented by stores that maintain a materialized
// rollup. Stores that recompute aggregates on read (the in-memory ledger)
// don't need one.
type RollupRefresher interface {
	RefreshRollups(ctx context.Context) (int, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// NewScheduler wires the rollup refresh job onto the given cron spec
// (e.g. "@every 10m").
func NewScheduler(refresher RollupRefresher, spec string, log logrus.FieldLogger) (*Scheduler, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		users, err := refresher.RefreshRollups(ctx)
		if err != nil {
			log.WithError(err).Error("rollup refresh failed")
			return
		}
		log.WithField("users", users).Debug("rollups refreshed")
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
