package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/cmeetit/cmeetit/internal/repository"
	"github.com/cmeetit/cmeetit/internal/service/payment"
)

var errStorage = errors.New("storage unavailable")

type fakeGoalRepo struct {
	mu      sync.Mutex
	goals   map[string]model.Goal
	nextID  int
	updates int
	// failUpdate makes Update fail for these goal ids.
	failUpdate map[string]bool
}

func newFakeGoalRepo(goals ...*model.Goal) *fakeGoalRepo {
	r := &fakeGoalRepo{goals: map[string]model.Goal{}, failUpdate: map[string]bool{}}
	for _, g := range goals {
		r.goals[g.ID] = clone(*g)
	}
	return r
}

func clone(g model.Goal) model.Goal {
	g.CheckIns = append([]civil.Date{}, g.CheckIns...)
	return g
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *model.Goal) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	goal.ID = fmt.Sprintf("new-%d", r.nextID)
	goal.CreatedAt = time.Now()
	r.goals[goal.ID] = clone(*goal)
	return goal.ID, nil
}

func (r *fakeGoalRepo) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	out := clone(g)
	return &out, nil
}

func (r *fakeGoalRepo) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			c := clone(g)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGoalRepo) Update(ctx context.Context, userID, goalID string, patch model.GoalPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate[goalID] {
		return errStorage
	}
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return repository.ErrGoalNotFound
	}
	r.updates++
	r.goals[goalID] = patch.Apply(g)
	return nil
}

func (r *fakeGoalRepo) Delete(ctx context.Context, userID, goalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return repository.ErrGoalNotFound
	}
	delete(r.goals, goalID)
	return nil
}

func (r *fakeGoalRepo) get(id string) model.Goal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.goals[id])
}

type fakeSettlementRepo struct {
	mu          sync.Mutex
	settlements []*model.Settlement
}

func (r *fakeSettlementRepo) Create(ctx context.Context, s *model.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = fmt.Sprintf("set-%d", len(r.settlements)+1)
	c := *s
	c.ClientSecret = ""
	c.CheckoutURL = ""
	r.settlements = append(r.settlements, &c)
	return nil
}

func (r *fakeSettlementRepo) ByProviderPaymentID(ctx context.Context, id string) (*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.settlements {
		if s.ProviderPaymentID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, repository.ErrSettlementNotFound
}

func (r *fakeSettlementRepo) LatestForGoal(ctx context.Context, userID, goalID string) (*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.settlements) - 1; i >= 0; i-- {
		s := r.settlements[i]
		if s.GoalID == goalID && s.UserID == userID {
			c := *s
			return &c, nil
		}
	}
	return nil, repository.ErrSettlementNotFound
}

func (r *fakeSettlementRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.settlements {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return repository.ErrSettlementNotFound
}

type fakeGateway struct {
	handle     *payment.PaymentHandle
	createErr  error
	succeeded  bool
	confirmErr error
	event      *payment.PaymentEvent
	webhookErr error
	requests   []payment.PaymentRequest
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePayment(ctx context.Context, req payment.PaymentRequest) (*payment.PaymentHandle, error) {
	g.requests = append(g.requests, req)
	return g.handle, g.createErr
}

func (g *fakeGateway) PaymentSucceeded(ctx context.Context, paymentID string) (bool, error) {
	return g.succeeded, g.confirmErr
}

func (g *fakeGateway) ParseWebhook(payload []byte, headers http.Header) (*payment.PaymentEvent, error) {
	return g.event, g.webhookErr
}
