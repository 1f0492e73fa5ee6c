package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey int

const (
	transactionKey contextKey = iota
)

type Tx struct {
	tx *gorm.DB
}

func Commit(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Commit()
}

func Rollback(ctx context.Context) (context.Context, error) {
	tx, ok := ctx.Value(transactionKey).(*Tx)
	if !ok {
		return ctx, nil
	}

	newCtx := context.WithValue(ctx, transactionKey, nil)
	return newCtx, tx.Rollback()
}

func FromContext(ctx context.Context) *gorm.DB {
	if tx, found := ctx.Value(transactionKey).(*Tx); found && tx != nil {
		return tx.tx
	}
	return nil
}

func newTransactionContext(ctx context.Context, db *gorm.DB) (context.Context, error) {
	// nested transactions reuse the outer one
	if _, found := ctx.Value(transactionKey).(*Tx); found {
		return ctx, nil
	}

	conn := db.Session(&gorm.Session{Context: ctx})

	tx := conn.Begin()
	if tx.Error != nil {
		return ctx, tx.Error
	}

	return context.WithValue(ctx, transactionKey, &Tx{tx: tx}), nil
}

func (t *Tx) Commit() error {
	if t.tx == nil {
		return errors.New("transaction already closed")
	}
	err := t.tx.Commit().Error
	t.tx = nil
	if err != nil {
		zap.S().Named("store").Errorf("failed to commit transaction: %v", err)
	}
	return err
}

func (t *Tx) Rollback() error {
	if t.tx == nil {
		return errors.New("transaction already closed")
	}
	err := t.tx.Rollback().Error
	t.tx = nil
	return err
}

// getDB resolves the transaction carried by ctx, falling back to the
// shared handle.
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
