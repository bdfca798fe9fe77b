package constants

const Namespace = "vattr"

// ErrorFieldNamespace for all exported error field keys.
const ErrorFieldNamespace = Namespace

const (
	RuleMin      = "min"
	RuleOneOf    = "oneof"
	RuleEmail    = "email"
	RulePositive = "positive"
	RuleNonZero  = "nonzero"
)
