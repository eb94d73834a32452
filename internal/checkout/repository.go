package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
)

// Repository persists orders and their frozen line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrdersBySession(ctx context.Context, sessionID string, limit int) ([]models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string, paidAt time.Time) error
	MarkCanceled(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return order, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line items")
	}
	return nil
}

func (r *repository) FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (r *repository) ListOrdersBySession(ctx context.Context, sessionID string, limit int) ([]models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]any{
			"status":     models.OrderStatusPaid,
			"payment_id": paymentID,
			"paid_at":    paidAt,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark order paid")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is not pending")
	}
	return nil
}

func (r *repository) MarkCanceled(ctx context.Context, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusCanceled)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark order canceled")
	}
	return nil
}
