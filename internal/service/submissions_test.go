package service

import (
	"context"
	"testing"
	"time"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmitNotifiesAdmin(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewContactService(setupTestDB(t), notifier)
	ctx := context.Background()

	_, err := svc.Submit(ctx, ContactInput{Name: "Ana", Email: "not-an-email", Message: "Hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(ctx, ContactInput{Name: "Ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, notifier.Events())

	msg, err := svc.Submit(ctx, ContactInput{Name: " Ana ", Email: "Ana@Example.com", Subject: "Regjistrimi", Message: "Kur fillon?"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", msg.Email)
	assert.False(t, msg.IsRead)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventContact, events[0].Type)
	assert.Equal(t, realtime.TopicAdmin, events[0].Topic)
	assert.Equal(t, msg.ID, events[0].RecordID)

	require.NoError(t, svc.MarkRead(msg.ID, true))
	require.NoError(t, svc.MarkRead(msg.ID, true))
	assert.ErrorIs(t, svc.MarkRead(999, true), ErrNotFound)

	unread, err := svc.List(true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	total, unreadCount, err := svc.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.EqualValues(t, 0, unreadCount)
}

func TestNewsletterSubscribeLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewNewsletterService(setupTestDB(t), notifier)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, " Student@School.EDU ", "")
	require.NoError(t, err)
	assert.Equal(t, "student@school.edu", sub.Email)
	assert.True(t, sub.IsActive)

	_, err = svc.Subscribe(ctx, "student@school.edu", "")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	require.NoError(t, svc.Unsubscribe("STUDENT@school.edu"))
	active, err := svc.CountActive()
	require.NoError(t, err)
	assert.EqualValues(t, 0, active)

	again, err := svc.Subscribe(ctx, "student@school.edu", "Student")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID, "re-subscribing reactivates the same row")
	assert.True(t, again.IsActive)
	assert.Nil(t, again.UnsubscribedAt)
	assert.Equal(t, "Student", again.FullName)

	assert.Len(t, notifier.Events(), 2)
	assert.ErrorIs(t, svc.Unsubscribe("ghost@example.com"), ErrNotFound)

	_, err = svc.Subscribe(ctx, "bad", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func validApplication() ApplicationInput {
	return ApplicationInput{
		ApplicantName:  "Blerta Morina",
		ApplicantEmail: "blerta@example.com",
		ParentName:     "Fatmir Morina",
		ParentPhone:    "+383 44 123 456",
		GradeLevel:     "10",
		Program:        "Informatikë",
		Documents: []db.ApplicationDocument{
			{Name: "certifikata.pdf", URL: "/uploads/applications/c.pdf"},
			{Name: "empty", URL: " "},
		},
	}
}

func TestApplicationSubmitAndReview(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewApplicationService(setupTestDB(t), notifier)
	now := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	missing := validApplication()
	missing.ParentPhone = ""
	_, err := svc.Submit(ctx, missing)
	assert.ErrorIs(t, err, ErrInvalidInput)

	app, err := svc.Submit(ctx, validApplication())
	require.NoError(t, err)
	assert.Equal(t, db.ApplicationPending, app.Status)
	assert.True(t, app.SubmittedAt.Equal(now))
	require.Len(t, app.Documents, 1)

	reloaded, err := svc.Get(app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Documents, reloaded.Documents)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventApplication, events[0].Type)

	_, err = svc.UpdateStatus(app.ID, "accepted", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	note := "Dokumentet në rregull"
	reviewed, err := svc.UpdateStatus(app.ID, "Approved", &note)
	require.NoError(t, err)
	assert.Equal(t, db.ApplicationApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, note, reviewed.Notes)

	counts, err := svc.CountByStatus()
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[db.ApplicationApproved])
	assert.EqualValues(t, 0, counts[db.ApplicationPending])

	list, err := svc.List(ApplicationFilter{Status: "approved", Search: "Blerta"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	require.NoError(t, svc.Delete(app.ID))
	assert.ErrorIs(t, svc.Delete(app.ID), ErrNotFound)
}

func TestFeedbackSummary(t *testing.T) {
	svc := NewFeedbackService(setupTestDB(t))

	_, err := svc.Submit(FeedbackInput{Category: "website", Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(FeedbackInput{Rating: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, rating := range []int{5, 4, 4} {
		_, err := svc.Submit(FeedbackInput{Category: "Website", Rating: rating})
		require.NoError(t, err)
	}
	_, err = svc.Submit(FeedbackInput{Category: "services", Rating: 3, IsAnonymous: true})
	require.NoError(t, err)

	summary, err := svc.Summary()
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "services", summary[0].Category)
	assert.EqualValues(t, 1, summary[0].Count)
	assert.Equal(t, "website", summary[1].Category)
	assert.InDelta(t, 4.33, summary[1].Average, 0.001)

	website, err := svc.List("website")
	require.NoError(t, err)
	assert.Len(t, website, 3)
}
