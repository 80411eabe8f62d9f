package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidMoney возвращается при невозможности разобрать денежную сумму
var ErrInvalidMoney = errors.New("invalid money value")

// Money денежная сумма с фиксированной точностью до копеек (хранится в сотых долях)
type Money int64

// NewMoney создает сумму из float64 с округлением до 2 знаков (половина округляется от нуля)
func NewMoney(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// MoneyFromCents создает сумму из количества сотых долей
func MoneyFromCents(cents int64) Money {
	return Money(cents)
}

// ParseMoney разбирает строку вида "1250.00"
func ParseMoney(s string) (Money, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return NewMoney(f), nil
}

// Cents возвращает сумму в сотых долях
func (m Money) Cents() int64 {
	return int64(m)
}

// Float64 возвращает сумму как число с плавающей точкой
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// Mul умножает сумму на коэффициент с округлением до сотых
func (m Money) Mul(factor float64) Money {
	return Money(math.Round(float64(m) * factor))
}

// ClampZero заменяет отрицательную сумму нулём
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

// String форматирует сумму как "1250.00"
func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON сериализует сумму как JSON-число с двумя знаками
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON разбирает JSON-число или строку
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value реализует driver.Valuer для колонок NUMERIC(12,2)
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan реализует sql.Scanner
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case float64:
		*m = NewMoney(v)
		return nil
	case int64:
		*m = Money(v * 100)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidMoney, src)
	}
}
