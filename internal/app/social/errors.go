package social

import "errors"

var (
	ErrInvalidBody        = errors.New("invalid_body")
	ErrTargetNotFound     = errors.New("target_not_found")
	ErrUnknownTargetAgent = errors.New("unknown_target_agent")
	ErrLogicRequired      = errors.New("logic_required")
)
