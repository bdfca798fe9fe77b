package errors

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/constants"
)

const namespace = constants.Namespace

// Error categories. Every binding error wraps exactly one of them, so callers
// can match a whole category with errors.Is.
var (
	ErrConfiguration = errors.New(namespace + ": configuration error")
	ErrSchema        = errors.New(namespace + ": schema error")
	ErrCollision     = errors.New(namespace + ": collision error")
)

// Sentinel errors. Use errors.Is to match.
var (
	ErrNoStoreColumn           = fmt.Errorf("%w: no store column provided", ErrConfiguration)
	ErrNoAttributes            = fmt.Errorf("%w: no virtual attributes provided", ErrConfiguration)
	ErrEmptyAttributeName      = fmt.Errorf("%w: empty virtual attribute name", ErrConfiguration)
	ErrRuleForUnknownAttribute = fmt.Errorf("%w: rules given for an attribute outside the binding", ErrConfiguration)
	ErrMalformedRules          = fmt.Errorf("%w: malformed rule list", ErrConfiguration)
	ErrUnknownRule             = fmt.Errorf("%w: unknown rule", ErrConfiguration)
	ErrNoSuchColumn            = fmt.Errorf("%w: no such column", ErrSchema)
	ErrNotTextColumn           = fmt.Errorf("%w: not a text column", ErrSchema)
	ErrColumnCollision         = fmt.Errorf("%w: virtual attributes collide with columns", ErrCollision)
	ErrAttributeCollision      = fmt.Errorf("%w: virtual attributes already declared", ErrCollision)
	ErrNilSchema               = errors.New(namespace + ": nil schema")
	ErrUnknownAttribute        = errors.New(namespace + ": unknown virtual attribute")
	ErrStoreEncode             = errors.New(namespace + ": cannot encode store column")
	ErrStoreDecode             = errors.New(namespace + ": cannot decode store column")
	ErrUnknownCodec            = errors.New(namespace + ": unknown codec")
	ErrAttributeTypeMismatch   = errors.New(namespace + ": attribute type mismatch")
	ErrInvalidRule             = errors.New(namespace + ": rule must have non-empty name and non-nil function")
	ErrRuleTypeMismatch        = errors.New(namespace + ": rule type mismatch")
	ErrDuplicateOverloadRule   = errors.New(namespace + ": duplicate overload rule")
	ErrRuleNotFound            = errors.New(namespace + ": rule not found")
	ErrRuleOverloadNotFound    = errors.New(namespace + ": rule overload not found")
	ErrInvalidValue            = errors.New(namespace + ": invalid value")
	ErrAmbiguousRule           = errors.New(namespace + ": ambiguous rule")
	ErrRuleConstraintViolated  = errors.New(namespace + ": rule constraint violated")
	ErrRuleInvalidParameter    = errors.New(namespace + ": invalid rule parameter")
	ErrRuleMissingParameter    = errors.New(namespace + ": missing rule parameter")
	ErrUnsupportedDialect      = errors.New(namespace + ": unsupported sql dialect")
	ErrTableNotFound           = errors.New(namespace + ": table not found")
	ErrRecordNotFound          = errors.New(namespace + ": record not found")
	ErrMissingKeyColumn        = errors.New(namespace + ": key column is not part of the table")
	ErrMissingRecordID         = errors.New(namespace + ": record has no id")
)

func newKey(segments ...string) errorc.Key {
	k := constants.ErrorFieldNamespace
	for _, s := range segments {
		k += "." + s
	}
	return errorc.Key(k)
}

// Internal hierarchical segments used to build dotted keys.
const (
	keySegmentClass     = "class"
	keySegmentColumn    = "column"
	keySegmentAttribute = "attribute"
	keySegmentRule      = "rule"
	keySegmentCodec     = "codec"
	keySegmentSQL       = "sql"
)

// Exported structured error field keys. Keep string values stable for log queries.
var (
	ErrorFieldClassName = newKey(keySegmentClass, "name") // vattr.class.name

	ErrorFieldColumnName = newKey(keySegmentColumn, "name") // vattr.column.name
	ErrorFieldColumnType = newKey(keySegmentColumn, "type") // vattr.column.type

	ErrorFieldAttributeName  = newKey(keySegmentAttribute, "name")  // vattr.attribute.name
	ErrorFieldAttributeNames = newKey(keySegmentAttribute, "names") // vattr.attribute.names
	ErrorFieldAttributeType  = newKey(keySegmentAttribute, "type")  // vattr.attribute.type

	ErrorFieldRuleName       = newKey(keySegmentRule, "name")            // vattr.rule.name
	ErrorFieldRuleList       = newKey(keySegmentRule, "list")            // vattr.rule.list
	ErrorFieldRuleParam      = newKey(keySegmentRule, "param")           // vattr.rule.param
	ErrorFieldFieldType      = newKey(keySegmentRule, "field_type")      // vattr.rule.field_type
	ErrorFieldValueType      = newKey(keySegmentRule, "value_type")      // vattr.rule.value_type
	ErrorFieldAvailableTypes = newKey(keySegmentRule, "available_types") // vattr.rule.available_types
	ErrorFieldConstraint     = newKey(keySegmentRule, "constraint")      // vattr.rule.constraint

	ErrorFieldCodecName = newKey(keySegmentCodec, "name") // vattr.codec.name

	ErrorFieldDialect = newKey(keySegmentSQL, "dialect") // vattr.sql.dialect
	ErrorFieldTable   = newKey(keySegmentSQL, "table")   // vattr.sql.table
	ErrorFieldID      = newKey(keySegmentSQL, "id")      // vattr.sql.id

	ErrorFieldCause = newKey("cause") // vattr.cause
)
