package services_test

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/test/mocks"
)

// passthroughTx returns a Transactor mock that simply runs fn with ctx
func passthroughTx(ctrl *gomock.Controller) *mocks.MockTransactor {
	tx := mocks.NewMockTransactor(ctrl)
	tx.EXPECT().
		WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()
	return tx
}

// decimalEq matches a decimal by value, so 0 and 0.00 are the same amount
func decimalEq(want decimal.Decimal) gomock.Matcher {
	return gomock.Cond(func(got decimal.Decimal) bool { return got.Equal(want) })
}
