package models

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"
)

// MoneyScale is the number of decimal places a monetary amount may carry.
const MoneyScale = 2

// ToMinorUnits converts amount to whole cents. Amounts finer than a cent
// are rejected rather than rounded.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(MoneyScale)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, MoneyScale)
	}
	return cents.IntPart(), nil
}

// FromMinorUnits converts whole cents back to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-MoneyScale)
}

// CentsSerializer stores decimal fields as BIGINT cents, so balance
// arithmetic in SQL is integer arithmetic on every driver.
type CentsSerializer struct{}

func init() {
	schema.RegisterSerializer("cents", CentsSerializer{})
}

func (CentsSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	var cents int64
	switch v := dbValue.(type) {
	case nil:
	case int64:
		cents = v
	case int32:
		cents = int64(v)
	case int:
		cents = int64(v)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", field.Name, err)
		}
		cents = n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", field.Name, err)
		}
		cents = n
	default:
		return fmt.Errorf("scanning %s: unsupported cents value %T", field.Name, dbValue)
	}
	field.ReflectValueOf(ctx, dst).Set(reflect.ValueOf(FromMinorUnits(cents)))
	return nil
}

func (CentsSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	amount, ok := fieldValue.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("field %s is %T, not decimal.Decimal", field.Name, fieldValue)
	}
	return ToMinorUnits(amount)
}
