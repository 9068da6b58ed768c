package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/campusevents/backend/internal/adapters/database/redis/feed"
	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/internal/domain/entity"
	"github.com/campusevents/backend/pkg/logger"
	"github.com/campusevents/backend/pkg/smtp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memDB backs every fake storage with the same in-memory tables.
type memDB struct {
	mu        sync.Mutex
	users     map[string]entity.User
	events    map[string]entity.Event
	favorites []entity.Favorite
	blasts    []entity.Blast
	reads     map[string]time.Time
	clock     *clock
	fail      error
}

func newMemDB(c *clock) *memDB {
	return &memDB{
		users:  map[string]entity.User{},
		events: map[string]entity.Event{},
		reads:  map[string]time.Time{},
		clock:  c,
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (db *memDB) withCreator(event entity.Event) entity.Event {
	event.Creator = db.users[event.CreatorID]
	return event
}

type fakeUsers struct{ *memDB }

func (f fakeUsers) Ensure(_ context.Context, user *entity.User) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if existing, ok := f.users[user.ID]; ok {
		return &existing, nil
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	user.CreatedAt = f.clock.Now()
	f.users[user.ID] = *user
	stored := *user
	return &stored, nil
}

func (f fakeUsers) Get(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (f fakeUsers) GetAll(_ context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]entity.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (f fakeUsers) SetBanned(_ context.Context, id string, banned bool, by *string, reason *string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	user.IsBanned, user.BannedBy, user.BanReason, user.BannedAt = banned, nil, nil, nil
	if banned {
		user.BannedAt, user.BannedBy, user.BanReason = &at, by, reason
	}
	f.users[id] = user
	return 1, nil
}

func (f fakeUsers) SetAdmin(_ context.Context, id string, admin bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	user.IsAdmin = admin
	f.users[id] = user
	return 1, nil
}

func (f fakeUsers) count(match func(entity.User) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, user := range f.users {
		if match(user) {
			n++
		}
	}
	return n
}

func (f fakeUsers) Count(context.Context) (int64, error) {
	return f.count(func(entity.User) bool { return true }), nil
}

func (f fakeUsers) CountBanned(context.Context) (int64, error) {
	return f.count(func(u entity.User) bool { return u.IsBanned }), nil
}

func (f fakeUsers) CountAdmins(context.Context) (int64, error) {
	return f.count(func(u entity.User) bool { return u.IsAdmin }), nil
}

type fakeEvents struct{ *memDB }

func (f fakeEvents) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	event.ID = uuid.NewString()
	event.CreatedAt = f.clock.Now()
	event.UpdatedAt = event.CreatedAt
	f.events[event.ID] = *event
	return event, nil
}

func (f fakeEvents) Get(_ context.Context, id string) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	event = f.withCreator(event)
	return &event, nil
}

func (f fakeEvents) Update(_ context.Context, event *entity.Event) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if _, ok := f.events[event.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	event.UpdatedAt = f.clock.Now()
	stored := *event
	stored.Creator = entity.User{}
	f.events[event.ID] = stored
	return event, nil
}

func (f fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if _, ok := f.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.events, id)

	favorites := f.favorites[:0]
	for _, favorite := range f.favorites {
		if favorite.EventID != id {
			favorites = append(favorites, favorite)
		}
	}
	f.favorites = favorites

	blasts := f.blasts[:0]
	for _, blast := range f.blasts {
		if blast.EventID != id {
			blasts = append(blasts, blast)
		}
	}
	f.blasts = blasts
	return nil
}

func (f fakeEvents) sorted(match func(entity.Event) bool, asc bool) []entity.Event {
	events := make([]entity.Event, 0)
	for _, event := range f.events {
		if match(event) {
			events = append(events, f.withCreator(event))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if asc {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].StartTime.After(events[j].StartTime)
	})
	return events
}

func (f fakeEvents) GetUpcoming(_ context.Context, from time.Time) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e entity.Event) bool { return !e.StartTime.Before(from) }, true), nil
}

func (f fakeEvents) GetByCreatorWithSaveCount(_ context.Context, creatorID string) ([]dto.EventWithSaveCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []dto.EventWithSaveCount
	for _, event := range f.sorted(func(e entity.Event) bool { return e.CreatorID == creatorID }, true) {
		var count int64
		for _, favorite := range f.favorites {
			if favorite.EventID == event.ID {
				count++
			}
		}
		result = append(result, dto.EventWithSaveCount{Event: event, SaveCount: count})
	}
	return result, nil
}

func (f fakeEvents) GetAll(_ context.Context) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(entity.Event) bool { return true }, false), nil
}

func (f fakeEvents) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.events)), nil
}

func (f fakeEvents) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	events, err := f.GetUpcoming(ctx, from)
	return int64(len(events)), err
}

type fakeFavorites struct{ *memDB }

func (f fakeFavorites) Create(_ context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	for _, favorite := range f.favorites {
		if favorite.UserID == userID && favorite.EventID == eventID {
			return nil
		}
	}
	f.favorites = append(f.favorites, entity.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: f.clock.Now(),
	})
	return nil
}

func (f fakeFavorites) Delete(_ context.Context, userID, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	kept := f.favorites[:0]
	for _, favorite := range f.favorites {
		if favorite.UserID == userID && favorite.EventID == eventID {
			removed++
			continue
		}
		kept = append(kept, favorite)
	}
	f.favorites = kept
	return removed, nil
}

func (f fakeFavorites) Exists(_ context.Context, userID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, favorite := range f.favorites {
		if favorite.UserID == userID && favorite.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeFavorites) GetEventIDsByUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	var ids []string
	for _, favorite := range f.favorites {
		if favorite.UserID == userID {
			ids = append(ids, favorite.EventID)
		}
	}
	return ids, nil
}

func (f fakeFavorites) GetSavedEvents(_ context.Context, userID string) ([]entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []entity.Event
	for i := len(f.favorites) - 1; i >= 0; i-- {
		if f.favorites[i].UserID == userID {
			events = append(events, f.withCreator(f.events[f.favorites[i].EventID]))
		}
	}
	return events, nil
}

func (f fakeFavorites) GetFavoriters(_ context.Context, eventID string) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []entity.User
	for _, favorite := range f.favorites {
		if favorite.EventID == eventID {
			users = append(users, f.users[favorite.UserID])
		}
	}
	return users, nil
}

func (f fakeFavorites) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.favorites)
}

type fakeBlasts struct{ *memDB }

func (f fakeBlasts) Create(_ context.Context, blast *entity.Blast) (*entity.Blast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	blast.ID = uuid.NewString()
	f.blasts = append(f.blasts, *blast)
	return blast, nil
}

func (f fakeBlasts) Get(_ context.Context, id string) (*entity.Blast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, blast := range f.blasts {
		if blast.ID == id {
			return &blast, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeBlasts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.blasts[:0]
	for _, blast := range f.blasts {
		if blast.ID != id {
			kept = append(kept, blast)
		}
	}
	f.blasts = kept
	return nil
}

func (f fakeBlasts) newest(match func(entity.Blast) bool) []entity.Blast {
	var blasts []entity.Blast
	for i := len(f.blasts) - 1; i >= 0; i-- {
		blast := f.blasts[i]
		if match(blast) {
			blast.Creator = f.users[blast.CreatorID]
			event := f.events[blast.EventID]
			blast.Event = entity.Event{ID: event.ID, Title: event.Title}
			blasts = append(blasts, blast)
		}
	}
	return blasts
}

func (f fakeBlasts) GetByEventID(_ context.Context, eventID string) ([]entity.Blast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newest(func(b entity.Blast) bool { return b.EventID == eventID }), nil
}

func (f fakeBlasts) GetByEventIDs(_ context.Context, eventIDs []string) ([]entity.Blast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newest(func(b entity.Blast) bool { return contains(eventIDs, b.EventID) }), nil
}

func (f fakeBlasts) ExistsAfter(_ context.Context, eventIDs []string, t time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, blast := range f.blasts {
		if contains(eventIDs, blast.EventID) && blast.CreatedAt.After(t) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBlasts) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.blasts)), nil
}

type fakeReads struct{ *memDB }

func (f fakeReads) Get(_ context.Context, userID string) (*entity.NotificationRead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.reads[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &entity.NotificationRead{UserID: userID, LastReadAt: at}, nil
}

func (f fakeReads) Upsert(_ context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.reads[userID] = at
	return nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	failPut bool
}

func (s *fakeStore) Put(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "https://cdn.example.edu/" + key, nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

type fakePublisher struct {
	published []dto.BlastInserted
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, blast dto.BlastInserted) error {
	p.published = append(p.published, blast)
	return p.err
}

type fakeMailer struct {
	to    [][]string
	blast []smtp.Blast
}

func (m *fakeMailer) SendBlast(to []string, blast smtp.Blast) error {
	m.to = append(m.to, to)
	m.blast = append(m.blast, blast)
	return nil
}

type fakeFeed struct {
	subscribed [][]string
}

func (f *fakeFeed) Subscribe(_ context.Context, eventIDs []string) (*feed.Subscription, error) {
	f.subscribed = append(f.subscribed, eventIDs)
	return nil, nil
}

// env wires every service over one memDB.
type env struct {
	db        *memDB
	clock     *clock
	store     *fakeStore
	publisher *fakePublisher
	mailer    *fakeMailer
	feed      *fakeFeed

	guard         *Guard
	users         *UserService
	events        *EventService
	favorites     *FavoriteService
	blasts        *BlastService
	notifications *NotificationService
	admin         *AdminService
}

func newEnv() *env {
	c := &clock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	db := newMemDB(c)
	log := logger.Nop()

	e := &env{
		db:        db,
		clock:     c,
		store:     &fakeStore{objects: map[string][]byte{}},
		publisher: &fakePublisher{},
		mailer:    &fakeMailer{},
		feed:      &fakeFeed{},
	}

	e.guard = NewGuard(log, fakeUsers{db})
	e.users = NewUserService(fakeUsers{db})
	e.events = NewEventService(log, e.guard, fakeEvents{db}, e.store, EventOptions{
		MaxImageWidth: 64,
		PublicURL:     "https://events.example.edu",
	})
	e.events.now = c.Now
	e.favorites = NewFavoriteService(fakeFavorites{db}, fakeEvents{db})
	e.blasts = NewBlastService(log, e.guard, fakeBlasts{db}, fakeEvents{db}, fakeFavorites{db}, e.publisher, e.mailer, "https://events.example.edu")
	e.blasts.now = c.Now
	e.notifications = NewNotificationService(log, fakeFavorites{db}, fakeBlasts{db}, fakeReads{db}, e.feed)
	e.notifications.now = c.Now
	e.admin = NewAdminService(log, e.guard, fakeUsers{db}, fakeEvents{db}, fakeBlasts{db}, e.events)
	e.admin.now = c.Now
	return e
}

// user registers a user and returns its id.
func (e *env) user(email string, admin bool) string {
	id := uuid.NewString()
	e.db.mu.Lock()
	e.db.users[id] = entity.User{ID: id, Email: email, IsAdmin: admin, CreatedAt: e.clock.Advance(time.Second)}
	e.db.mu.Unlock()
	return id
}

func (e *env) form(title string) dto.EventForm {
	return dto.EventForm{
		Title:     title,
		Location:  "Main hall",
		StartTime: e.clock.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}
}
