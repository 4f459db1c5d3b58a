package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
)

// Result of a placement. Empty is set, with nothing else, when a whole-cart
// placement found no lines; that is not an error.
type Result struct {
	Order Order
	Items []OrderItem
	Empty bool
}

// Placer turns cart lines into an order and its items. The order, its items
// and the removal of the consumed lines commit together or not at all.
type Placer struct {
	Store   Store
	Events  EventSink
	Log     logrus.FieldLogger
	Service string
	Now     func() time.Time
}

// PlaceLine orders a single cart line on behalf of its owner.
func (p *Placer) PlaceLine(ctx context.Context, id auth.Identity, lineID int64) (Result, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Order, Action: policy.Create}) {
		return Result{}, apperr.Forbidden()
	}

	var res Result
	err := p.Store.InTx(ctx, func(tx Tx) error {
		line, err := tx.GetCartLine(ctx, lineID)
		if err != nil {
			return err
		}
		if !policy.Allow(id, policy.Request{Resource: policy.Cart, Action: policy.Delete, Owner: line.UserID}) {
			return apperr.Forbidden()
		}
		res, err = p.consume(ctx, tx, line.UserID, []cart.Line{line})
		return err
	})
	if err != nil {
		return Result{}, err
	}
	p.published(ctx, res)
	return res, nil
}

// PlaceCart orders every line in the caller's cart.
func (p *Placer) PlaceCart(ctx context.Context, id auth.Identity) (Result, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Order, Action: policy.Create}) {
		return Result{}, apperr.Forbidden()
	}

	var res Result
	err := p.Store.InTx(ctx, func(tx Tx) error {
		lines, err := tx.ListCartLines(ctx, id.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			res = Result{Empty: true}
			return nil
		}
		res, err = p.consume(ctx, tx, id.UserID, lines)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if !res.Empty {
		p.published(ctx, res)
	}
	return res, nil
}

// consume must run inside tx. Line prices are snapshotted before any write;
// live catalog prices are never consulted.
func (p *Placer) consume(ctx context.Context, tx Tx, owner int64, lines []cart.Line) (Result, error) {
	total := decimal.Zero
	ids := make([]int64, 0, len(lines))
	snap := make([]NewOrderItem, 0, len(lines))
	date := p.now()
	for _, l := range lines {
		price := l.Price()
		total = total.Add(price)
		ids = append(ids, l.ID)
		snap = append(snap, NewOrderItem{MenuItemID: l.MenuItem.ID, Status: StatusPending, Total: price, Date: date})
	}

	order, err := tx.CreateOrder(ctx, NewOrder{UserID: owner, Total: total, Price: total})
	if err != nil {
		return Result{}, fmt.Errorf("create order: %w", err)
	}
	items := make([]OrderItem, 0, len(snap))
	for _, in := range snap {
		in.OrderID = order.ID
		it, err := tx.CreateOrderItem(ctx, in)
		if err != nil {
			return Result{}, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, it)
	}

	n, err := tx.DeleteCartLines(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("delete cart lines: %w", err)
	}
	if n != int64(len(ids)) {
		return Result{}, apperr.Internal("delete cart lines", fmt.Errorf("removed %d of %d lines", n, len(ids)))
	}
	return Result{Order: order, Items: items}, nil
}

func (p *Placer) published(ctx context.Context, res Result) {
	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{
			"order_id": res.Order.ID,
			"user_id":  res.Order.UserID,
			"items":    len(res.Items),
			"total":    res.Order.Total.StringFixed(2),
		}).Info("order placed")
	}
	if p.Events == nil {
		return
	}
	env, err := placedEnvelope(p.Service, res.Order, res.Items)
	if err != nil {
		if p.Log != nil {
			p.Log.WithError(err).Warn("encode order placed event")
		}
		return
	}
	p.Events.Emit(ctx, TopicOrderPlaced, PartitionKey(res.Order.ID), env)
}

func (p *Placer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
