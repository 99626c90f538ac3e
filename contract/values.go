package contract

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// coerceArgs converts *big.Int arguments to the concrete integer type each
// method input declares. Everything else passes through untouched.
func coerceArgs(method abi.Method, args []interface{}) ([]interface{}, error) {
	if len(args) != len(method.Inputs) {
		return nil, errors.Errorf("%s takes %d arguments, got %d", method.Name, len(method.Inputs), len(args))
	}
	out := make([]interface{}, len(args))
	for i, in := range method.Inputs {
		v, err := coerce(in.Type, args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "%s argument %q", method.Name, in.Name)
		}
		out[i] = v
	}
	return out, nil
}

func coerce(t abi.Type, v interface{}) (interface{}, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return v, nil
	}
	if t.T != abi.UintTy && t.T != abi.IntTy {
		return nil, errors.Errorf("cannot use a number as %s", t.String())
	}
	unsigned := t.T == abi.UintTy
	if unsigned && n.Sign() < 0 {
		return nil, errors.Errorf("%s is negative", n)
	}
	min, max := intRange(unsigned, t.Size)
	if n.Cmp(min) < 0 || n.Cmp(max) > 0 {
		return nil, errors.Errorf("%s overflows %s", n, t.String())
	}
	if t.Size > 64 {
		return n, nil
	}

	switch t.Size {
	case 8:
		if unsigned {
			return uint8(n.Uint64()), nil
		}
		return int8(n.Int64()), nil
	case 16:
		if unsigned {
			return uint16(n.Uint64()), nil
		}
		return int16(n.Int64()), nil
	case 32:
		if unsigned {
			return uint32(n.Uint64()), nil
		}
		return int32(n.Int64()), nil
	case 64:
		if unsigned {
			return n.Uint64(), nil
		}
		return n.Int64(), nil
	}
	// uint24, uint40 etc. are encoded from *big.Int
	return n, nil
}

// intRange returns the inclusive bounds of an ABI integer of the given width.
func intRange(unsigned bool, size int) (*big.Int, *big.Int) {
	if unsigned {
		max := new(big.Int).Lsh(big.NewInt(1), uint(size))
		return big.NewInt(0), max.Sub(max, big.NewInt(1))
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
	min := new(big.Int).Neg(half)
	return min, new(big.Int).Sub(half, big.NewInt(1))
}

// Tuples come back from the ABI decoder as anonymous structs whose field names
// are the camel-cased component names. The helpers below read them by name so
// the Go side does not depend on the component order.

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := v.FieldByName(abi.ToCamelCase(name))
	return f, f.IsValid()
}

func fieldString(v reflect.Value, name string) (string, error) {
	f, ok := structField(v, name)
	if !ok || f.Kind() != reflect.String {
		return "", errors.Errorf("result has no string field %q", name)
	}
	return f.String(), nil
}

func fieldBool(v reflect.Value, name string) (bool, error) {
	f, ok := structField(v, name)
	if !ok || f.Kind() != reflect.Bool {
		return false, errors.Errorf("result has no bool field %q", name)
	}
	return f.Bool(), nil
}

func fieldBig(v reflect.Value, name string) (*big.Int, error) {
	f, ok := structField(v, name)
	if !ok {
		return nil, errors.Errorf("result has no numeric field %q", name)
	}
	switch f.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(f.Uint()), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(f.Int()), nil
	}
	if n, ok := f.Interface().(*big.Int); ok && n != nil {
		return new(big.Int).Set(n), nil
	}
	return nil, errors.Errorf("field %q is not numeric", name)
}

func fieldAddress(v reflect.Value, name string) (common.Address, error) {
	f, ok := structField(v, name)
	if !ok {
		return common.Address{}, errors.Errorf("result has no address field %q", name)
	}
	a, ok := f.Interface().(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("field %q is not an address", name)
	}
	return a, nil
}

// optional swallows a missing-field error and returns the zero value.
func optional[T any](v T, err error) T {
	if err != nil {
		var zero T
		return zero
	}
	return v
}

func sliceOf(v interface{}) ([]reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Errorf("expected a list, got %T", v)
	}
	items := make([]reflect.Value, rv.Len())
	for i := range items {
		items[i] = rv.Index(i)
	}
	return items, nil
}
