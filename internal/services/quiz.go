package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"memora-backend/internal/fsrs"
	"memora-backend/internal/grading"
	"memora-backend/internal/models"
	"memora-backend/internal/repository"
)

const (
	maxQuizLength = 50

	// How many times Submit reapplies a review that lost the optimistic
	// scheduler-state race before giving up.
	reviewRetryLimit = 3
)

// QuizStore persists quiz sessions, their frozen item lists, and results.
type QuizStore interface {
	Create(ctx context.Context, q *models.Quiz) error
	GetByID(ctx context.Context, id, learnerID uuid.UUID) (*models.Quiz, error)
	InsertResult(ctx context.Context, res *models.Result) error
	Finish(ctx context.Context, id uuid.UUID, finishedAt time.Time, finalScore float64) error
}

type QuizService struct {
	items   ItemStore
	quizzes QuizStore
	reviews *ReviewService
	events  Publisher
	now     func() time.Time
}

func NewQuizService(items ItemStore, quizzes QuizStore, reviews *ReviewService, events Publisher) *QuizService {
	return &QuizService{
		items:   items,
		quizzes: quizzes,
		reviews: reviews,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start freezes an ordered item list into a new in-progress quiz. Callers
// either name the items explicitly or ask for a drill of `limit` items,
// which picks from the published bank irrespective of due status.
func (s *QuizService) Start(ctx context.Context, learnerID uuid.UUID, req models.StartQuizRequest) (*models.Quiz, error) {
	fieldErrors := make(map[string]string)
	if len(req.ItemIDs) == 0 && req.Limit <= 0 {
		fieldErrors["limit"] = "Must be positive when item_ids is empty"
	}
	if req.Limit > maxQuizLength || len(req.ItemIDs) > maxQuizLength {
		fieldErrors["limit"] = "Quiz length exceeds maximum"
	}
	if req.TimeLimitS != nil && *req.TimeLimitS <= 0 {
		fieldErrors["time_limit_s"] = "Must be positive when set"
	}
	if req.Type != "" && !models.ItemType(req.Type).IsValid() {
		fieldErrors["type"] = "Unknown item type"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Code: CodeInvalidParams, Fields: fieldErrors}
	}

	var items []*models.Item
	var err error
	if len(req.ItemIDs) > 0 {
		items, err = s.items.GetByIDs(ctx, req.ItemIDs)
		if err != nil {
			return nil, err
		}
		if len(items) != len(req.ItemIDs) {
			return nil, &NotFoundError{Code: CodeItemNotFound, Message: "One or more items do not exist"}
		}
		// Preserve the caller's ordering.
		byID := make(map[uuid.UUID]*models.Item, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}
		ordered := make([]*models.Item, 0, len(req.ItemIDs))
		for _, id := range req.ItemIDs {
			ordered = append(ordered, byID[id])
		}
		items = ordered
	} else {
		available, err := s.items.CountPublished(ctx, req.Type)
		if err != nil {
			return nil, err
		}
		if req.Limit > available {
			return nil, &ValidationError{Code: CodeInvalidParams, Fields: map[string]string{
				"limit": "Exceeds the number of available items",
			}}
		}
		items, err = s.items.ListPublished(ctx, req.Type, req.Limit, 0)
		if err != nil {
			return nil, err
		}
	}

	quiz := &models.Quiz{
		LearnerID:  learnerID,
		Status:     models.QuizStatusInProgress,
		TimeLimitS: req.TimeLimitS,
		StartedAt:  s.now(),
	}
	for i, it := range items {
		quiz.Items = append(quiz.Items, models.QuizItem{
			ItemID:   it.ID,
			Position: i,
			Type:     it.Type,
			Prompt:   it.Prompt,
		})
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Get returns the quiz with its frozen item list and recorded results.
// Abandoned quizzes stay queryable in_progress indefinitely.
func (s *QuizService) Get(ctx context.Context, learnerID, quizID uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID, learnerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, &NotFoundError{Code: CodeQuizNotFound, Message: "Quiz not found"}
		}
		return nil, err
	}
	return quiz, nil
}

// Submit grades one response inside an in-progress quiz and feeds the
// outcome into the review scheduler, so quizzing trains the same memory
// model as explicit reviews.
func (s *QuizService) Submit(ctx context.Context, learnerID, quizID uuid.UUID, req models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error) {
	quiz, err := s.Get(ctx, learnerID, quizID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.checkActive(quiz, now); err != nil {
		return nil, err
	}

	inQuiz := false
	for _, qi := range quiz.Items {
		if qi.ItemID == req.ItemID {
			inQuiz = true
			break
		}
	}
	if !inQuiz {
		return nil, &NotFoundError{Code: CodeItemNotInQuiz, Message: "Item is not part of this quiz"}
	}
	for _, res := range quiz.Results {
		if res.ItemID == req.ItemID {
			return nil, &ConflictError{Code: CodeDuplicateSubmission, Message: "Item already submitted for this quiz"}
		}
	}

	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, &NotFoundError{Code: CodeItemNotFound, Message: "Item not found"}
		}
		return nil, err
	}

	graded, err := grading.Grade(item, req.Response)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrUnsupportedItemType):
			return nil, &ValidationError{Code: CodeUnsupportedItemType, Fields: map[string]string{
				"type": "Item type cannot be graded",
			}}
		case errors.Is(err, grading.ErrMalformedResponse), errors.Is(err, grading.ErrMalformedPayload):
			return nil, &ValidationError{Code: CodeInvalidParams, Fields: map[string]string{
				"response": err.Error(),
			}}
		}
		return nil, err
	}

	result := &models.Result{
		QuizID:      quizID,
		ItemID:      req.ItemID,
		Correct:     graded.Correct,
		Score:       graded.Score,
		Response:    req.Response,
		Explanation: graded.Explanation,
		LatencyMs:   req.LatencyMs,
		SubmittedAt: now,
	}
	if err := s.quizzes.InsertResult(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicateResult) {
			return nil, &ConflictError{Code: CodeDuplicateSubmission, Message: "Item already submitted for this quiz"}
		}
		return nil, err
	}

	// The result is already persisted at this point, so a lost scheduler
	// race must not surface: re-reading the fresh state and reapplying the
	// review is always valid, the quiz outcome does not change.
	reviewReq := models.RecordReviewRequest{
		ItemID:    req.ItemID,
		Rating:    int(quizRating(graded.Correct)),
		Correct:   graded.Correct,
		LatencyMs: req.LatencyMs,
		Mode:      models.ReviewModeQuiz,
	}
	var reviewResp *models.RecordReviewResponse
	for attempt := 0; ; attempt++ {
		reviewResp, err = s.reviews.RecordReview(ctx, learnerID, reviewReq)
		if err == nil {
			break
		}
		var conflict *ConflictError
		if errors.As(err, &conflict) && conflict.Code == CodeConcurrentModification && attempt < reviewRetryLimit {
			continue
		}
		return nil, err
	}

	return &models.SubmitAnswerResponse{
		Correct:      graded.Correct,
		Score:        graded.Score,
		Explanation:  graded.Explanation,
		NextDue:      reviewResp.NextDue,
		IntervalDays: reviewResp.IntervalDays,
	}, nil
}

// Finish closes an in-progress quiz and computes the final breakdown.
// Unanswered items score zero; expiry does not block finishing, it only
// stops further submissions.
func (s *QuizService) Finish(ctx context.Context, learnerID, quizID uuid.UUID) (*models.QuizSummary, error) {
	quiz, err := s.Get(ctx, learnerID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizStatusFinished {
		return nil, &ConflictError{Code: CodeQuizAlreadyFinished, Message: "Quiz is already finished"}
	}

	now := s.now()
	var total float64
	correct := 0
	for _, res := range quiz.Results {
		total += res.Score
		if res.Correct {
			correct++
		}
	}
	finalScore := 0.0
	if len(quiz.Items) > 0 {
		finalScore = total / float64(len(quiz.Items))
	}

	if err := s.quizzes.Finish(ctx, quizID, now, finalScore); err != nil {
		if errors.Is(err, repository.ErrQuizNotActive) {
			return nil, &ConflictError{Code: CodeQuizAlreadyFinished, Message: "Quiz is already finished"}
		}
		return nil, err
	}

	summary := &models.QuizSummary{
		QuizID:       quizID,
		FinalScore:   finalScore,
		TotalItems:   len(quiz.Items),
		CorrectItems: correct,
		Answered:     len(quiz.Results),
		TimeTakenS:   int(now.Sub(quiz.StartedAt).Seconds()),
	}

	if s.events != nil {
		s.events.PublishUpdate(ctx, learnerID, models.WSMessage{
			Type: "quiz.finished",
			Payload: models.QuizFinishedEvent{
				QuizID:       quizID,
				FinalScore:   finalScore,
				TotalItems:   summary.TotalItems,
				CorrectItems: correct,
			},
		})
		s.events.EnqueueProgressRefresh(ctx, learnerID)
	}
	return summary, nil
}

func (s *QuizService) checkActive(quiz *models.Quiz, now time.Time) error {
	if quiz.Status == models.QuizStatusFinished {
		return &ConflictError{Code: CodeQuizAlreadyFinished, Message: "Quiz is already finished"}
	}
	if quiz.TimeLimitS != nil {
		deadline := quiz.StartedAt.Add(time.Duration(*quiz.TimeLimitS) * time.Second)
		if now.After(deadline) {
			return &GoneError{Code: CodeQuizExpired, Message: "Quiz time limit has elapsed; call finish to get the final score"}
		}
	}
	return nil
}

// quizRating maps objective correctness onto the self-rating scale.
func quizRating(correct bool) fsrs.Rating {
	if correct {
		return fsrs.Good
	}
	return fsrs.Again
}
