package runner

import (
	"context"
	"log"
	"time"

	"github.com/anirudh/sutra/internal/store"
)

// Messenger delivers scheduled-run output back to a chat.
type Messenger interface {
	Send(chatID string, text string) error
}

// ScheduleStore is the slice of the run store the scheduler needs.
type ScheduleStore interface {
	GetDueSchedules() ([]store.Schedule, error)
	UpdateScheduleLastRun(id int) error
	DeleteSchedule(chatID string, id int) error
}

// Scheduler polls for due scheduled asks and runs each through the
// service, notifying the originating chat with the outcome.
type Scheduler struct {
	Service *Service
	Store   ScheduleStore
	Gateway Messenger
}

func NewScheduler(service *Service, st ScheduleStore, gateway Messenger) *Scheduler {
	return &Scheduler{
		Service: service,
		Store:   st,
		Gateway: gateway,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	log.Println("Schedule poller started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAndExecute(ctx)
		}
	}
}

func (s *Scheduler) pollAndExecute(ctx context.Context) {
	due, err := s.Store.GetDueSchedules()
	if err != nil {
		log.Printf("Error polling schedules: %v", err)
		return
	}

	for _, sc := range due {
		log.Printf("Running scheduled ask %d for chat %s: %s", sc.ID, sc.ChatID, sc.Ask)

		reply, err := s.Service.RunAsk(ctx, sc.Ask)
		if err != nil {
			log.Printf("Error running scheduled ask %d: %v", sc.ID, err)
			continue
		}

		if err := s.Store.UpdateScheduleLastRun(sc.ID); err != nil {
			log.Printf("Error updating last run for schedule %d: %v", sc.ID, err)
		}

		// One-time schedules (interval 0) are removed after running.
		if sc.Interval == 0 {
			if err := s.Store.DeleteSchedule(sc.ChatID, sc.ID); err != nil {
				log.Printf("Error deleting one-time schedule %d: %v", sc.ID, err)
			}
		}

		if s.Gateway != nil {
			s.Gateway.Send(sc.ChatID, "⏰ *Scheduled Run Output*\n\n"+reply)
		}
	}
}
