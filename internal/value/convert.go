package value

import "strconv"

// AsChar, AsInt, AsFloat, AsStr, AsList, AsBool and ConvertTo implement
// the conversion surface. Numeric<->numeric is a C-style cast,
// string->numeric requires whole-string consumption (ValueError on any
// unparsed tail), numeric->string uses the canonical textual form, and
// char<->int is a codepoint cast.

func ConvertTo(tag Tag, o *Object) (*Object, error) {
	switch tag {
	case TagChar:
		return AsChar(o)
	case TagInt:
		return AsInt(o)
	case TagFloat:
		return AsFloat(o)
	case TagString:
		return AsStr(o)
	case TagList:
		return AsList(o)
	default:
		return nil, typeErr("cannot convert to %s", tag)
	}
}

func AsChar(o *Object) (*Object, error) {
	switch o.tag {
	case TagChar:
		return NewChar(o.ch), nil
	case TagInt:
		return NewChar(byte(o.i)), nil
	case TagFloat:
		return NewChar(byte(int64(o.f))), nil
	case TagString:
		if len(o.s) != 1 {
			return nil, valueErr("cannot convert string of length %d to char", len(o.s))
		}
		return NewChar(o.s[0]), nil
	default:
		return nil, typeErr("cannot convert %s to char", o.tag)
	}
}

func AsInt(o *Object) (*Object, error) {
	switch o.tag {
	case TagChar:
		return NewInt(int64(o.ch)), nil
	case TagInt:
		return NewInt(o.i), nil
	case TagFloat:
		return NewInt(int64(o.f)), nil
	case TagString:
		n, err := strconv.ParseInt(string(o.s), 10, 64)
		if err != nil {
			return nil, valueErr("invalid int literal: %q", string(o.s))
		}
		return NewInt(n), nil
	default:
		return nil, typeErr("cannot convert %s to int", o.tag)
	}
}

func AsFloat(o *Object) (*Object, error) {
	switch o.tag {
	case TagChar:
		return NewFloat(float64(o.ch)), nil
	case TagInt:
		return NewFloat(float64(o.i)), nil
	case TagFloat:
		return NewFloat(o.f), nil
	case TagString:
		f, err := strconv.ParseFloat(string(o.s), 64)
		if err != nil {
			return nil, valueErr("invalid float literal: %q", string(o.s))
		}
		return NewFloat(f), nil
	default:
		return nil, typeErr("cannot convert %s to float", o.tag)
	}
}

func AsStr(o *Object) (*Object, error) {
	switch o.tag {
	case TagString:
		return NewString(string(o.s)), nil
	case TagChar, TagInt, TagFloat:
		return NewString(numericToString(o)), nil
	case TagList:
		return NewString(Print(o)), nil
	case TagNone:
		return NewString("none"), nil
	default:
		return nil, typeErr("cannot convert %s to string", o.tag)
	}
}

func AsList(o *Object) (*Object, error) {
	switch o.tag {
	case TagList:
		return DeepCopy(o), nil
	case TagString:
		nl := NewList()
		for _, c := range o.s {
			ch := NewChar(c)
			ListAppend(nl, ch)
			DecRef(ch)
		}
		return nl, nil
	default:
		return nil, typeErr("cannot convert %s to list", o.tag)
	}
}

// AsBool implements the numeric-nonzero-is-true coercion conditions
// use; only numeric operands are admitted.
func AsBool(o *Object) (bool, error) {
	if !o.tag.isNumeric() {
		return false, typeErr("condition must be numeric, got %s", o.tag)
	}
	return !isZero(o), nil
}

func numericToString(o *Object) string {
	switch o.tag {
	case TagInt:
		return strconv.FormatInt(o.i, 10)
	case TagChar:
		return string(o.ch)
	case TagFloat:
		return strconv.FormatFloat(o.f, 'g', 16, 64)
	default:
		return ""
	}
}
