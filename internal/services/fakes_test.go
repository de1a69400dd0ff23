package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"memora-backend/internal/models"
	"memora-backend/internal/repository"
)

// In-memory stores mirroring the Postgres repositories' contracts,
// including optimistic versioning and duplicate-result detection.

type fakeItemStore struct {
	items map[uuid.UUID]*models.Item
	order []uuid.UUID
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[uuid.UUID]*models.Item)}
}

func (f *fakeItemStore) add(t models.ItemType, prompt, payload string) *models.Item {
	item := &models.Item{
		ID:          uuid.New(),
		Type:        t,
		Prompt:      prompt,
		PayloadJSON: json.RawMessage(payload),
		Status:      "published",
		CreatedAt:   time.Now().UTC().Add(time.Duration(len(f.order)) * time.Second),
	}
	f.items[item.ID] = item
	f.order = append(f.order, item.ID)
	return item
}

func (f *fakeItemStore) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return item, nil
}

func (f *fakeItemStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Item, error) {
	var out []*models.Item
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItemStore) ListPublished(_ context.Context, itemType string, limit, offset int) ([]*models.Item, error) {
	var matching []*models.Item
	for _, id := range f.order {
		if item := f.items[id]; itemType == "" || string(item.Type) == itemType {
			matching = append(matching, item)
		}
	}
	var out []*models.Item
	for i := offset; i < len(matching) && len(out) < limit; i++ {
		out = append(out, matching[i])
	}
	return out, nil
}

func (f *fakeItemStore) CountPublished(_ context.Context, itemType string) (int, error) {
	n := 0
	for _, id := range f.order {
		if itemType == "" || string(f.items[id].Type) == itemType {
			n++
		}
	}
	return n, nil
}

type stateKey struct {
	learnerID, itemID uuid.UUID
}

type fakeSchedulerStore struct {
	states  map[stateKey]*models.SchedulerState
	reviews []*models.Review
	items   *fakeItemStore
}

func newFakeSchedulerStore(items *fakeItemStore) *fakeSchedulerStore {
	return &fakeSchedulerStore{states: make(map[stateKey]*models.SchedulerState), items: items}
}

func (f *fakeSchedulerStore) Get(_ context.Context, learnerID, itemID uuid.UUID) (*models.SchedulerState, error) {
	s, ok := f.states[stateKey{learnerID, itemID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSchedulerStore) Insert(_ context.Context, s *models.SchedulerState) error {
	key := stateKey{s.LearnerID, s.ItemID}
	if _, exists := f.states[key]; exists {
		return repository.ErrVersionConflict
	}
	s.Version = 1
	cp := *s
	f.states[key] = &cp
	return nil
}

func (f *fakeSchedulerStore) Update(_ context.Context, s *models.SchedulerState, expectedVersion int) error {
	key := stateKey{s.LearnerID, s.ItemID}
	existing, ok := f.states[key]
	if !ok || existing.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	cp := *s
	f.states[key] = &cp
	return nil
}

func (f *fakeSchedulerStore) InsertReview(_ context.Context, rev *models.Review) error {
	rev.ID = uuid.New()
	cp := *rev
	f.reviews = append(f.reviews, &cp)
	return nil
}

func (f *fakeSchedulerStore) ListDue(_ context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]models.QueueItem, error) {
	var due []*models.SchedulerState
	for key, s := range f.states {
		if key.learnerID == learnerID && !s.DueAt.After(now) {
			due = append(due, s)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].Difficulty > due[j].Difficulty
	})

	var out []models.QueueItem
	for _, s := range due {
		if len(out) == limit {
			break
		}
		item := f.items.items[s.ItemID]
		dueAt := s.DueAt
		out = append(out, models.QueueItem{ID: item.ID, Type: item.Type, Prompt: item.Prompt, DueAt: &dueAt})
	}
	return out, nil
}

func (f *fakeSchedulerStore) ListNew(_ context.Context, learnerID uuid.UUID, limit int) ([]models.QueueItem, error) {
	var out []models.QueueItem
	for _, id := range f.items.order {
		if len(out) == limit {
			break
		}
		if _, seen := f.states[stateKey{learnerID, id}]; seen {
			continue
		}
		item := f.items.items[id]
		out = append(out, models.QueueItem{ID: item.ID, Type: item.Type, Prompt: item.Prompt, IsNew: true})
	}
	return out, nil
}

type fakeQuizStore struct {
	quizzes map[uuid.UUID]*models.Quiz
	results map[uuid.UUID][]models.Result
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{
		quizzes: make(map[uuid.UUID]*models.Quiz),
		results: make(map[uuid.UUID][]models.Result),
	}
}

func (f *fakeQuizStore) Create(_ context.Context, q *models.Quiz) error {
	q.ID = uuid.New()
	q.Version = 1
	for i := range q.Items {
		q.Items[i].QuizID = q.ID
	}
	cp := *q
	cp.Items = append([]models.QuizItem(nil), q.Items...)
	f.quizzes[q.ID] = &cp
	return nil
}

func (f *fakeQuizStore) GetByID(_ context.Context, id, learnerID uuid.UUID) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok || q.LearnerID != learnerID {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	cp.Items = append([]models.QuizItem(nil), q.Items...)
	cp.Results = append([]models.Result(nil), f.results[id]...)
	return &cp, nil
}

func (f *fakeQuizStore) InsertResult(_ context.Context, res *models.Result) error {
	for _, existing := range f.results[res.QuizID] {
		if existing.ItemID == res.ItemID {
			return repository.ErrDuplicateResult
		}
	}
	f.results[res.QuizID] = append(f.results[res.QuizID], *res)
	return nil
}

func (f *fakeQuizStore) Finish(_ context.Context, id uuid.UUID, finishedAt time.Time, finalScore float64) error {
	q, ok := f.quizzes[id]
	if !ok || q.Status != models.QuizStatusInProgress {
		return repository.ErrQuizNotActive
	}
	q.Status = models.QuizStatusFinished
	q.FinishedAt = &finishedAt
	q.FinalScore = &finalScore
	q.Version++
	return nil
}

type fakePublisher struct {
	messages  []models.WSMessage
	refreshes []uuid.UUID
}

func (f *fakePublisher) PublishUpdate(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	f.messages = append(f.messages, msg)
}

func (f *fakePublisher) EnqueueProgressRefresh(_ context.Context, learnerID uuid.UUID) {
	f.refreshes = append(f.refreshes, learnerID)
}
