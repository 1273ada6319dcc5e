package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/users"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetDocumentByID(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockStore) ApplyTransition(ctx context.Context, t *documents.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockStore) ListHistory(ctx context.Context, documentID uuid.UUID) ([]documents.WorkflowHistory, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]documents.WorkflowHistory), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockDirectory) ListDepartmentUsers(ctx context.Context, departmentID uuid.UUID) ([]users.User, error) {
	args := m.Called(ctx, departmentID)
	return args.Get(0).([]users.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
	events []Event
}

func (m *MockNotifier) NotifyTransition(ctx context.Context, event Event) error {
	m.events = append(m.events, event)
	args := m.Called(ctx, event)
	return args.Error(0)
}

type engineFixture struct {
	store     *MockStore
	directory *MockDirectory
	notifier  *MockNotifier
	engine    *Engine

	dept    uuid.UUID
	author  *users.User // level 1
	manager *users.User // level 2
	head    *users.User // level 3
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	dept := uuid.New()
	f := &engineFixture{
		store:     new(MockStore),
		directory: new(MockDirectory),
		notifier:  new(MockNotifier),
		dept:      dept,
		author:    &users.User{ID: uuid.New(), RoleLevel: 1, DepartmentID: dept, CreatedAt: time.Now().Add(-72 * time.Hour)},
		manager:   &users.User{ID: uuid.New(), RoleLevel: 2, DepartmentID: dept, CreatedAt: time.Now().Add(-48 * time.Hour)},
		head:      &users.User{ID: uuid.New(), RoleLevel: 3, DepartmentID: dept, CreatedAt: time.Now().Add(-24 * time.Hour)},
	}
	resolver := NewDepartmentLadderResolver(f.directory)
	f.engine = NewEngine(f.store, f.directory, resolver, f.notifier, zap.NewNop())
	return f
}

func (f *engineFixture) document(status documents.DocumentStatus, handler *users.User) *documents.Document {
	doc := &documents.Document{
		ID:              uuid.New(),
		DocumentNumber:  "DOC-20260831-TEST",
		Title:           "Test document",
		Status:          status,
		CreatedByUserID: f.author.ID,
		DepartmentID:    f.dept,
	}
	if handler != nil {
		id := handler.ID
		doc.CurrentHandlerUserID = &id
	}
	return doc
}

func TestSubmitRoutesToTarget(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusDraft, f.author)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.author.ID).Return(f.author, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)

	var applied *documents.Transition
	f.store.On("ApplyTransition", ctx, mock.AnythingOfType("*documents.Transition")).
		Run(func(args mock.Arguments) { applied = args.Get(1).(*documents.Transition) }).
		Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.AnythingOfType("workflow.Event")).Return(nil)

	result, err := f.engine.Submit(ctx, doc.ID, f.author.ID, f.manager.ID, "please review")

	require.NoError(t, err)
	assert.Equal(t, documents.StatusPending, result.Status)
	require.NotNil(t, result.CurrentHandlerUserID)
	assert.Equal(t, f.manager.ID, *result.CurrentHandlerUserID)

	require.NotNil(t, applied)
	assert.Equal(t, documents.StatusDraft, applied.FromStatus)
	require.NotNil(t, applied.History)
	assert.Equal(t, documents.ActionSubmit, applied.History.Action)
	assert.Equal(t, f.author.ID, applied.History.FromUserID)
	require.NotNil(t, applied.History.ToUserID)
	assert.Equal(t, f.manager.ID, *applied.History.ToUserID)
	assert.Equal(t, "please review", applied.History.Comments)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, documents.ActionSubmit, f.notifier.events[0].Type)
	assert.Equal(t, f.manager.ID, *f.notifier.events[0].ToUserID)
}

func TestSubmitFromRevisionRequested(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusRevisionRequested, f.author)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.author.ID).Return(f.author, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.Anything).Return(nil)

	result, err := f.engine.Submit(ctx, doc.ID, f.author.ID, f.manager.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPending, result.Status)
}

func TestSubmitRejectsPeerOrJuniorTarget(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusDraft, f.manager)

	peer := &users.User{ID: uuid.New(), RoleLevel: 2, DepartmentID: f.dept}

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)
	f.directory.On("GetUser", ctx, peer.ID).Return(peer, nil)
	f.directory.On("GetUser", ctx, f.author.ID).Return(f.author, nil)

	_, err := f.engine.Submit(ctx, doc.ID, f.manager.ID, peer.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = f.engine.Submit(ctx, doc.ID, f.manager.ID, f.author.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// No side effects on failure.
	f.store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events)
	assert.Equal(t, documents.StatusDraft, doc.Status)
}

func TestSubmitInvalidState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	for _, status := range []documents.DocumentStatus{
		documents.StatusPending, documents.StatusInReview,
		documents.StatusApproved, documents.StatusRejected, documents.StatusCompleted,
	} {
		doc := f.document(status, f.author)
		f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)

		_, err := f.engine.Submit(ctx, doc.ID, f.author.ID, f.manager.ID, "")
		assert.ErrorIs(t, err, ErrInvalidState, "submit from %s", status)
	}
	f.store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestSubmitPermissionDenied(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusDraft, f.author)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)

	_, err := f.engine.Submit(ctx, doc.ID, f.manager.ID, f.head.ID, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	f.store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestApproveTerminates(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	var applied *documents.Transition
	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).
		Run(func(args mock.Arguments) { applied = args.Get(1).(*documents.Transition) }).
		Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.Anything).Return(nil)

	result, err := f.engine.Approve(ctx, doc.ID, f.manager.ID, "looks good", false)

	require.NoError(t, err)
	assert.Equal(t, documents.StatusApproved, result.Status)
	assert.Nil(t, result.CurrentHandlerUserID, "terminal approve clears the handler")

	require.NotNil(t, applied.History)
	assert.Equal(t, documents.ActionApprove, applied.History.Action)
	assert.Nil(t, applied.History.ToUserID)
}

func TestApproveEscalatesToNextLevel(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)
	f.directory.On("ListDepartmentUsers", ctx, f.dept).
		Return([]users.User{*f.author, *f.manager, *f.head}, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.Anything).Return(nil)

	result, err := f.engine.Approve(ctx, doc.ID, f.manager.ID, "escalating", true)

	require.NoError(t, err)
	assert.Equal(t, documents.StatusPending, result.Status, "escalated approve re-enters PENDING")
	require.NotNil(t, result.CurrentHandlerUserID)
	assert.Equal(t, f.head.ID, *result.CurrentHandlerUserID)
}

func TestApproveEscalationWithoutSeniorFails(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.head)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.head.ID).Return(f.head, nil)
	f.directory.On("ListDepartmentUsers", ctx, f.dept).
		Return([]users.User{*f.author, *f.manager, *f.head}, nil)

	_, err := f.engine.Approve(ctx, doc.ID, f.head.ID, "", true)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	f.store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestRejectRequiresComments(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	for _, comments := range []string{"", "   ", "\t\n"} {
		_, err := f.engine.Reject(ctx, uuid.New(), f.manager.ID, comments)
		assert.ErrorIs(t, err, ErrValidation)
	}
	f.store.AssertNotCalled(t, "GetDocumentByID", mock.Anything, mock.Anything)
}

func TestRejectTerminatesAndClearsHandler(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusInReview, f.manager)

	var applied *documents.Transition
	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).
		Run(func(args mock.Arguments) { applied = args.Get(1).(*documents.Transition) }).
		Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.Anything).Return(nil)

	result, err := f.engine.Reject(ctx, doc.ID, f.manager.ID, "missing signature")

	require.NoError(t, err)
	assert.Equal(t, documents.StatusRejected, result.Status)
	assert.Nil(t, result.CurrentHandlerUserID)
	assert.Equal(t, documents.ActionReject, applied.History.Action)
	assert.Nil(t, applied.History.ToUserID)

	// REJECTED is terminal: a follow-up approve fails with no further writes.
	_, err = f.engine.Approve(ctx, doc.ID, f.manager.ID, "", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	handlerID := f.manager.ID
	doc.CurrentHandlerUserID = &handlerID
	_, err = f.engine.Approve(ctx, doc.ID, f.manager.ID, "", false)
	assert.ErrorIs(t, err, ErrInvalidState)
	f.store.AssertNumberOfCalls(t, "ApplyTransition", 1)
}

func TestRequestRevisionRoutesDown(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)
	f.directory.On("GetUser", ctx, f.author.ID).Return(f.author, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).Return(nil)
	f.notifier.On("NotifyTransition", ctx, mock.Anything).Return(nil)

	result, err := f.engine.RequestRevision(ctx, doc.ID, f.manager.ID, f.author.ID, "numbers look off")

	require.NoError(t, err)
	assert.Equal(t, documents.StatusRevisionRequested, result.Status)
	require.NotNil(t, result.CurrentHandlerUserID)
	assert.Equal(t, f.author.ID, *result.CurrentHandlerUserID)
}

func TestRequestRevisionRejectsSeniorTarget(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.directory.On("GetUser", ctx, f.manager.ID).Return(f.manager, nil)
	f.directory.On("GetUser", ctx, f.head.ID).Return(f.head, nil)

	_, err := f.engine.RequestRevision(ctx, doc.ID, f.manager.ID, f.head.ID, "take a look")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	f.store.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestRequestRevisionRequiresComments(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.RequestRevision(context.Background(), uuid.New(), f.manager.ID, f.author.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConcurrentModificationSurfaces(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).Return(documents.ErrConflict)

	_, err := f.engine.Approve(ctx, doc.ID, f.manager.ID, "", false)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Empty(t, f.notifier.events, "losing transition must not notify")
}

func TestStartReviewKeepsHandlerAndAudit(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	var applied *documents.Transition
	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	f.store.On("ApplyTransition", ctx, mock.Anything).
		Run(func(args mock.Arguments) { applied = args.Get(1).(*documents.Transition) }).
		Return(nil)

	result, err := f.engine.StartReview(ctx, doc.ID, f.manager.ID)

	require.NoError(t, err)
	assert.Equal(t, documents.StatusInReview, result.Status)
	require.NotNil(t, result.CurrentHandlerUserID)
	assert.Equal(t, f.manager.ID, *result.CurrentHandlerUserID)
	assert.Nil(t, applied.History, "review marker keeps no audit entry")
	assert.Empty(t, f.notifier.events)
}

func TestHistoryNotFound(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	id := uuid.New()

	f.store.On("GetDocumentByID", ctx, id).Return(nil, nil)

	_, err := f.engine.History(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllowedActions(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.manager)

	f.store.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)

	actions, err := f.engine.AllowedActions(ctx, doc.ID, f.manager.ID)
	require.NoError(t, err)
	assert.Contains(t, actions, "APPROVE")
	assert.Contains(t, actions, "REJECT")

	actions, err = f.engine.AllowedActions(ctx, doc.ID, f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, actions, "non-handlers get no actions")
}

func TestDepartmentLadderResolverPrefersClosestSenior(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	doc := f.document(documents.StatusPending, f.author)

	elderManager := users.User{ID: uuid.New(), RoleLevel: 2, DepartmentID: f.dept, CreatedAt: f.manager.CreatedAt.Add(-time.Hour)}

	f.directory.On("ListDepartmentUsers", ctx, f.dept).
		Return([]users.User{*f.author, *f.manager, elderManager, *f.head}, nil)

	resolver := NewDepartmentLadderResolver(f.directory)
	next, err := resolver.NextHandler(ctx, doc, f.author)

	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.RoleLevel, "closest senior level wins over head")
	assert.Equal(t, elderManager.ID, next.ID, "ties break by earliest account")
}
