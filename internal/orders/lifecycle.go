package orders

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
)

type UpdateRequest struct {
	OrderID      *int64  `json:"order_id"`
	Status       *Status `json:"status"`
	DeliveryCrew *string `json:"delivery_crew"`
}

// Lifecycle changes the status and delivery crew of existing orders.
type Lifecycle struct {
	Store   Store
	Users   UserLookup
	Events  EventSink
	Log     logrus.FieldLogger
	Service string
}

// Update authorizes each supplied field on its own; one denied field denies
// the whole call and nothing is written.
func (l *Lifecycle) Update(ctx context.Context, id auth.Identity, req UpdateRequest) (Order, error) {
	if !id.Authenticated() {
		return Order{}, apperr.Forbidden()
	}
	canStatus := policy.Allow(id, policy.Request{Resource: policy.Order, Action: policy.UpdateStatus})
	canCrew := policy.Allow(id, policy.Request{Resource: policy.Order, Action: policy.UpdateDeliveryCrew})
	if !canStatus && !canCrew {
		return Order{}, apperr.Forbidden()
	}
	if req.OrderID == nil {
		return Order{}, apperr.BadRequest("Please Provide a valid Order ID")
	}
	if req.DeliveryCrew != nil && *req.DeliveryCrew == "" {
		req.DeliveryCrew = nil
	}
	if req.Status == nil && req.DeliveryCrew == nil {
		return Order{}, apperr.BadRequest("Please provide a status or a delivery crew")
	}

	if req.Status != nil {
		if !canStatus {
			return Order{}, apperr.Forbidden()
		}
		if !req.Status.Valid() {
			return Order{}, apperr.Validation(map[string]string{"status": "Must be 0 (pending) or 1 (delivered)."})
		}
	}
	if req.DeliveryCrew != nil && !canCrew {
		return Order{}, apperr.Forbidden()
	}

	if _, err := l.Store.GetOrder(ctx, *req.OrderID); err != nil {
		return Order{}, err
	}

	patch := Patch{Status: req.Status}
	if req.DeliveryCrew != nil {
		target, err := l.Users.IdentityByUsername(ctx, *req.DeliveryCrew)
		if err != nil {
			return Order{}, err
		}
		switch policy.AssignDeliveryCrew(id, target) {
		case policy.Denied:
			return Order{}, apperr.Forbidden()
		case policy.TargetNotCrew:
			return Order{}, apperr.BadRequest("User is not a part of the delivery crew")
		}
		patch.DeliveryCrew = &target.UserID
	}

	o, err := l.Store.UpdateOrder(ctx, *req.OrderID, patch)
	if err != nil {
		return Order{}, err
	}

	if l.Log != nil {
		l.Log.WithFields(logrus.Fields{
			"order_id":      o.ID,
			"status":        o.Status.String(),
			"delivery_crew": o.DeliveryCrew,
			"by":            id.UserID,
		}).Info("order updated")
	}
	l.published(ctx, o)
	return o, nil
}

func (l *Lifecycle) published(ctx context.Context, o Order) {
	if l.Events == nil {
		return
	}
	env, err := updatedEnvelope(l.Service, o)
	if err != nil {
		if l.Log != nil {
			l.Log.WithError(err).WithField("order_id", o.ID).Warn("encode order updated event")
		}
		return
	}
	l.Events.Emit(ctx, TopicOrderUpdated, PartitionKey(o.ID), env)
}
