package utils

import "errors"

// Rejection sentinels. workflow.RejectionError wraps one of the first three
// so transport layers can classify rejections with errors.Is.
var (
	ErrorInputTooShort      = errors.New("input too short")
	ErrorLowConfidence      = errors.New("low format confidence")
	ErrorGuardrailViolation = errors.New("guardrail violation")
	ErrorEmptyWorkbook      = errors.New("workbook contains no rows")
)
