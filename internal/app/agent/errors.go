package agent

import "errors"

var (
	ErrInvalidBody   = errors.New("invalid_body")
	ErrNameTaken     = errors.New("name_taken")
	ErrInvalidAPIKey = errors.New("invalid_api_key")
	ErrClaimNotFound = errors.New("claim_not_found")
)
