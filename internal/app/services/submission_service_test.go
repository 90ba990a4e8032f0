package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
)

func TestSubmitCreatesPendingWithSnapshot(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if submission.Status != models.SubmissionStatusPending {
		t.Errorf("expected PENDING, got %s", submission.Status)
	}
	if submission.Attempt != 1 {
		t.Errorf("expected attempt 1, got %d", submission.Attempt)
	}
	if submission.PointsAward != 25 {
		t.Errorf("expected award snapshot 25, got %d", submission.PointsAward)
	}
	if got := accountBalance(t, env.db, account.ID); got != 0 {
		t.Errorf("submit must not credit points, balance %d", got)
	}
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	if _, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if !errors.HasCode(err, errors.ErrCodeDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}
}

func TestSubmitInactiveQuest(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	env.db.Model(&models.Quest{}).Where("id = ?", quest.ID).Update("is_active", false)

	if _, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil); err == nil {
		t.Fatal("expected error for inactive quest")
	}
}

func TestSubmitAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	past := time.Now().Add(-time.Hour)
	env.db.Model(&models.Quest{}).Where("id = ?", quest.ID).Update("deadline", past)

	if _, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil); err == nil {
		t.Fatal("expected error for expired quest")
	}
}

func TestApproveCreditsAwardSnapshot(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Raising the award after submission must not change what the approval
	// credits.
	env.db.Model(&models.Quest{}).Where("id = ?", quest.ID).Update("points_award", 1000)

	approverID := uuid.New()
	approved, err := env.submission.Approve(schoolID, submission.ID, &approverID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if approved.Status != models.SubmissionStatusApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if got := accountBalance(t, env.db, account.ID); got != 25 {
		t.Errorf("expected snapshot credit of 25, got %d", got)
	}
}

func TestApproveTwiceCreditsOnce(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := env.submission.Approve(schoolID, submission.ID, nil); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err = env.submission.Approve(schoolID, submission.ID, nil)
	if !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	if got := accountBalance(t, env.db, account.ID); got != 25 {
		t.Errorf("double approval credited twice, balance %d", got)
	}
}

func TestRejectThenApproveIsBlocked(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reviewerID := uuid.New()
	rejected, err := env.submission.Reject(schoolID, submission.ID, reviewerID, &models.SubmissionRejectRequest{Feedback: "Missing evidence"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Feedback == nil || *rejected.Feedback != "Missing evidence" {
		t.Errorf("feedback not recorded: %v", rejected.Feedback)
	}

	_, err = env.submission.Approve(schoolID, submission.ID, nil)
	if !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("expected invalid transition after reject, got %v", err)
	}
	if got := accountBalance(t, env.db, account.ID); got != 0 {
		t.Errorf("rejected submission credited points: %d", got)
	}
}

func TestResubmitAfterRejectFollowsPolicy(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := env.submission.Reject(schoolID, submission.ID, uuid.New(), &models.SubmissionRejectRequest{Feedback: "Try again"}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Default policy: rejection is final.
	_, err = env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if !errors.HasCode(err, errors.ErrCodeDuplicateSubmission) {
		t.Fatalf("expected duplicate submission under default policy, got %v", err)
	}

	infrastructures.Config.ALLOW_RESUBMIT_AFTER_REJECT = true
	defer func() { infrastructures.Config.ALLOW_RESUBMIT_AFTER_REJECT = false }()

	retry, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if retry.Attempt != 2 {
		t.Errorf("expected attempt 2, got %d", retry.Attempt)
	}
}

func TestAutoQuestApprovesImmediately(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 40, models.QuestValidationAuto)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if submission.Status != models.SubmissionStatusApproved {
		t.Errorf("expected APPROVED for auto quest, got %s", submission.Status)
	}
	if submission.DecidedBy != nil {
		t.Errorf("auto approval must not record a reviewer, got %v", submission.DecidedBy)
	}
	if got := accountBalance(t, env.db, account.ID); got != 40 {
		t.Errorf("expected balance 40, got %d", got)
	}
}

func TestRejectRequiresFeedback(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := env.submission.Reject(schoolID, submission.ID, uuid.New(), &models.SubmissionRejectRequest{}); err == nil {
		t.Fatal("expected validation error for empty feedback")
	}
}

func TestPendingQueueIsOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	accountA := createTestAccount(t, env.db, schoolID, 0)
	accountB := createTestAccount(t, env.db, schoolID, 0)
	quest := createTestQuest(t, env.db, schoolID, 25, models.QuestValidationManual)

	first, err := env.submission.Submit(schoolID, accountA.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := env.submission.Submit(schoolID, accountB.ID, quest.ID, nil); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Age the first submission so ordering does not depend on clock
	// resolution.
	env.db.Model(&models.QuestSubmission{}).Where("id = ?", first.ID).Update("submitted_at", time.Now().Add(-time.Minute))

	pending, err := env.submission.GetPendingSubmissions(schoolID, 10, 0)
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Errorf("queue is not oldest first")
	}
}
