package internal

import (
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

// ValidationRuleInspector answers questions about declarative validation rules.
type ValidationRuleInspector struct {
	logger *zap.Logger
}

// NewValidationRuleInspector creates an inspector. A nil logger uses zap.L().
func NewValidationRuleInspector(logger *zap.Logger) *ValidationRuleInspector {
	if logger == nil {
		logger = zap.L()
	}
	return &ValidationRuleInspector{logger: logger}
}

// HasUnconditionalPresenceRule reports whether any rule on field is a presence
// rule without If/Unless/On conditions. Records without a validation-rule
// query capability have no such rule.
func (i *ValidationRuleInspector) HasUnconditionalPresenceRule(record nilability.RecordClass, field string) (found bool) {
	if record == nil {
		return false
	}
	querier, ok := record.(nilability.ValidatorQuerier)
	if !ok {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Debug("validator lookup panicked; treating field as unvalidated",
				zap.String("record", safeRecordName(record)),
				zap.String("field", field),
				zap.Any("panic", r))
			found = false
		}
	}()

	for _, rule := range querier.ValidatorsOn(field) {
		if rule.Unconditional() {
			return true
		}
	}
	return false
}
