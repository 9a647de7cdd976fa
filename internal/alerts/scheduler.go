// Package alerts runs the recurring alert jobs and the synchronous
// instant-alert path. Both drive the same per-user pipeline:
// resolve city, fetch AQI, personalize, render, send, persist.
package alerts

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"aircast/internal/aqi"
	"aircast/internal/cities"
	apperrors "aircast/internal/errors"
	"aircast/internal/mail"
	"aircast/internal/models"
	"aircast/internal/personalize"
	"aircast/internal/sentry"
	"aircast/internal/storage"
)

// Fetcher is the slice of the AQI client the scheduler needs.
type Fetcher interface {
	FetchCity(ctx context.Context, city string, lat, lon float64) (*aqi.Sample, error)
}

// Mailer is the slice of the mail sender the scheduler needs.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Scheduler owns the two recurring alert loops.
type Scheduler struct {
	store   storage.Store
	fetcher Fetcher
	engine  *personalize.Engine
	mailer  Mailer

	// perUserDelay throttles outbound provider calls inside a batch.
	perUserDelay time.Duration
	// now is swapped in tests to pin the clock.
	now func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const (
	dailyInterval  = time.Hour
	changeInterval = 30 * time.Minute
)

func NewScheduler(store storage.Store, fetcher Fetcher, engine *personalize.Engine, mailer Mailer) *Scheduler {
	return &Scheduler{
		store:        store,
		fetcher:      fetcher,
		engine:       engine,
		mailer:       mailer,
		perUserDelay: 500 * time.Millisecond,
		now:          time.Now,
	}
}

// Start launches the daily and change-detection loops. They run until
// Stop is called or ctx is canceled; a restart simply resumes on the
// next tick since the only persisted state is each user's last_aqi.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop(ctx, "daily", dailyInterval, s.runDailyPass)
	go s.loop(ctx, "change", changeInterval, s.runChangePass)
	log.Printf("alerts: scheduler started (daily every %v, change every %v)", dailyInterval, changeInterval)
}

// Stop cancels the loops and waits for any in-flight pass to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Println("alerts: scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, pass func(context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			pass(ctx)
			log.Printf("alerts: %s pass completed in %v", name, time.Since(start).Round(time.Millisecond))
		}
	}
}

// runDailyPass sends the daily email to every user whose preferred
// hour matches the current hour. Per-user failures never abort the
// batch.
func (s *Scheduler) runDailyPass(ctx context.Context) {
	users, err := s.store.ListUsers()
	if err != nil {
		sentry.CaptureError(err, "alerts: daily pass could not list users")
		return
	}
	hour := s.now().Hour()
	for _, user := range users {
		if !dailyTimeMatches(user.AlertPrefs.DailyTime, hour) {
			continue
		}
		if err := s.processUser(ctx, &user, mail.KindDaily); err != nil {
			sentry.CaptureErrorf(err, "alerts: daily alert failed for user %d", user.ID)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.perUserDelay):
		}
	}
}

// runChangePass sends a change email to every opted-in user whose
// current AQI differs from the stored last_aqi.
func (s *Scheduler) runChangePass(ctx context.Context) {
	users, err := s.store.ListUsers()
	if err != nil {
		sentry.CaptureError(err, "alerts: change pass could not list users")
		return
	}
	for _, user := range users {
		if !user.AlertPrefs.OnChange || user.LastAQI == nil {
			continue
		}
		city, ok := cities.Lookup(user.City)
		if !ok {
			// Unknown city is a skip, not an error.
			continue
		}
		sample, err := s.fetcher.FetchCity(ctx, city.Name, city.Lat, city.Lon)
		if err != nil {
			sentry.CaptureErrorf(err, "alerts: change fetch failed for user %d", user.ID)
			continue
		}
		if sample.AQI == *user.LastAQI {
			continue
		}
		if err := s.sendAlert(ctx, &user, city.Name, sample, mail.KindChange); err != nil {
			sentry.CaptureErrorf(err, "alerts: change alert failed for user %d", user.ID)
			continue
		}
		if err := s.store.UpdateLastAQI(user.ID, sample.AQI); err != nil {
			sentry.CaptureErrorf(err, "alerts: persisting last_aqi failed for user %d", user.ID)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.perUserDelay):
		}
	}
}

// RunInstant performs the full pipeline synchronously for one user.
// Gated by the user's instant_button preference.
func (s *Scheduler) RunInstant(ctx context.Context, userID uint) (*aqi.Sample, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.AlertPrefs.InstantButton {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "instant alerts are disabled for this user")
	}
	sample, err := s.processUserSample(ctx, user, mail.KindInstant)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// processUser runs the pipeline and discards the sample.
func (s *Scheduler) processUser(ctx context.Context, user *models.User, kind string) error {
	_, err := s.processUserSample(ctx, user, kind)
	return err
}

func (s *Scheduler) processUserSample(ctx context.Context, user *models.User, kind string) (*aqi.Sample, error) {
	city, ok := cities.Lookup(user.City)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrValidation, fmt.Sprintf("unknown city %q", user.City))
	}
	sample, err := s.fetcher.FetchCity(ctx, city.Name, city.Lat, city.Lon)
	if err != nil {
		return nil, err
	}
	if err := s.sendAlert(ctx, user, city.Name, sample, kind); err != nil {
		return nil, err
	}
	if err := s.store.UpdateLastAQI(user.ID, sample.AQI); err != nil {
		return nil, err
	}
	return sample, nil
}

// sendAlert personalizes, renders and delivers one email. Steps run
// strictly in sequence; AI prose is optional and skipped on miss.
func (s *Scheduler) sendAlert(ctx context.Context, user *models.User, cityName string, sample *aqi.Sample, kind string) error {
	recs, _ := s.engine.Recommendations(ctx, user.HealthProfile, sample.AQI)
	insight, _ := s.engine.Insight(ctx, user.HealthProfile, sample.AQI)

	body := mail.RenderAlert(user.Name, cityName, sample.AQI, recs, insight)
	subject := mail.Subject(kind, cityName, sample.AQI)
	return s.mailer.Send(user.Email, subject, body)
}

// dailyTimeMatches reports whether pref ("HH:MM") names the given
// hour. Malformed or empty preferences never match.
func dailyTimeMatches(pref string, hour int) bool {
	parts := strings.SplitN(pref, ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	return h == hour
}
